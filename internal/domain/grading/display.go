package grading

import (
	"fmt"
	"math"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPLAY FORMATTING
// Чистые функции: значение + система -> строка для отображения.
// Настройка округления передаётся явно, а не читается из глобального состояния.
// ══════════════════════════════════════════════════════════════════════════════

// traditionalNotation - таблица канонических значений традиционной шкалы.
// Совпадение строго точное (с допуском на погрешность представления float64):
// вычисленное среднее 1.733 - это не каноническое 1.7, а промежуточное значение.
var traditionalNotation = []struct {
	value    float64
	notation string
}{
	{0.7, "1+"},
	{1.0, "1"},
	{1.3, "1-"},
	{1.7, "2+"},
	{2.0, "2"},
	{2.3, "2-"},
	{2.7, "3+"},
	{3.0, "3"},
	{3.3, "3-"},
	{3.7, "4+"},
	{4.0, "4"},
	{4.3, "4-"},
	{4.7, "5+"},
	{5.0, "5"},
	{5.3, "5-"},
	{5.7, "6+"},
	{6.0, "6"},
}

// notationEpsilon - допуск на шум представления float64 при сравнении
// значения с каноническим.
const notationEpsilon = 1e-9

// FormatValue возвращает каноническую строку отображения значения.
//
// Для традиционной шкалы каноничные значения (0.7, 1.0, 1.3, ... 6.0)
// отображаются в немецкой нотации с плюсами и минусами (1.7 -> "2+");
// все остальные значения (например, вычисленные средние) форматируются
// с одним десятичным знаком.
//
// Для пунктовой шкалы значение либо округляется до целого с суффиксом "P"
// (roundPointAverages = true, поведение по умолчанию), либо форматируется
// с одним десятичным знаком.
func FormatValue(value float64, system System, roundPointAverages bool) string {
	if system == SystemPoints {
		if roundPointAverages {
			return fmt.Sprintf("%d P", int(math.Round(value)))
		}
		return fmt.Sprintf("%.1f P", value)
	}

	for _, entry := range traditionalNotation {
		if math.Abs(value-entry.value) < notationEpsilon {
			return entry.notation
		}
	}
	return fmt.Sprintf("%.1f", value)
}

// ══════════════════════════════════════════════════════════════════════════════
// COLOR BANDS
// Шесть непрерывных диапазонов успеваемости. У традиционной шкалы лучший
// диапазон внизу, у пунктовой - наверху (обратная полярность).
// ══════════════════════════════════════════════════════════════════════════════

// Band представляет диапазон успеваемости (1 - лучший, 6 - худший).
type Band int

const (
	BandExcellent    Band = 1
	BandGood         Band = 2
	BandSatisfactory Band = 3
	BandAdequate     Band = 4
	BandPoor         Band = 5
	BandInsufficient Band = 6
)

// bandColors - фиксированные цвета диапазонов (от лучшего к худшему).
var bandColors = map[Band]string{
	BandExcellent:    "#2E7D32",
	BandGood:         "#66BB6A",
	BandSatisfactory: "#FBC02D",
	BandAdequate:     "#F57C00",
	BandPoor:         "#E64A19",
	BandInsufficient: "#C62828",
}

// bandNames - немецкие названия диапазонов.
var bandNames = map[Band]string{
	BandExcellent:    "sehr gut",
	BandGood:         "gut",
	BandSatisfactory: "befriedigend",
	BandAdequate:     "ausreichend",
	BandPoor:         "mangelhaft",
	BandInsufficient: "ungenügend",
}

// ColorHex возвращает цвет диапазона в hex-формате.
func (b Band) ColorHex() string {
	if color, ok := bandColors[b]; ok {
		return color
	}
	return bandColors[BandInsufficient]
}

// DisplayName возвращает немецкое название диапазона.
func (b Band) DisplayName() string {
	if name, ok := bandNames[b]; ok {
		return name
	}
	return bandNames[BandInsufficient]
}

// BandFor возвращает диапазон успеваемости для значения.
//
// Традиционная шкала: [0.7,1.7) [1.7,2.7) [2.7,3.7) [3.7,4.7) [4.7,5.7) [5.7,6.0].
// Пунктовая шкала:    [13,15]   [10,13)   [7,10)    [4,7)     [1,4)     [0,1).
// Границы закрыты снизу, последний (крайний) диапазон закрыт с обеих сторон.
func BandFor(value float64, system System) Band {
	if system == SystemPoints {
		switch {
		case value >= 13:
			return BandExcellent
		case value >= 10:
			return BandGood
		case value >= 7:
			return BandSatisfactory
		case value >= 4:
			return BandAdequate
		case value >= 1:
			return BandPoor
		default:
			return BandInsufficient
		}
	}

	switch {
	case value < 1.7:
		return BandExcellent
	case value < 2.7:
		return BandGood
	case value < 3.7:
		return BandSatisfactory
	case value < 4.7:
		return BandAdequate
	case value < 5.7:
		return BandPoor
	default:
		return BandInsufficient
	}
}

// ColorFor возвращает hex-цвет для значения в указанной системе.
func ColorFor(value float64, system System) string {
	return BandFor(value, system).ColorHex()
}
