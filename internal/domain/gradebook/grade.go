package gradebook

import (
	"errors"
	"time"

	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE TYPE
// Статический справочник типов оценок с весами. Пользовательские типы
// сознательно не поддерживаются в этом ядре.
// ══════════════════════════════════════════════════════════════════════════════

// GradeType представляет тип оценки с весом для взвешенного среднего.
type GradeType struct {
	// Name - имя типа (уникальный ключ справочника).
	Name string

	// Weight - положительный вес типа в взвешенном среднем.
	Weight float64
}

// Предопределённые типы оценок.
var (
	GradeTypeMajorExam = GradeType{Name: "major_exam", Weight: 3}
	GradeTypeTest      = GradeType{Name: "test", Weight: 2}
	GradeTypeHomework  = GradeType{Name: "homework", Weight: 1}
	GradeTypeOral      = GradeType{Name: "oral_participation", Weight: 1}
)

// GradeTypes возвращает справочник типов в фиксированном порядке.
func GradeTypes() []GradeType {
	return []GradeType{GradeTypeMajorExam, GradeTypeTest, GradeTypeHomework, GradeTypeOral}
}

// GradeTypeByName возвращает тип по имени.
// Возвращает ErrUnknownGradeType для неизвестного имени.
func GradeTypeByName(name string) (GradeType, error) {
	for _, t := range GradeTypes() {
		if t.Name == name {
			return t, nil
		}
	}
	return GradeType{}, ErrUnknownGradeType
}

// DisplayName возвращает немецкое название типа оценки.
func (t GradeType) DisplayName() string {
	switch t.Name {
	case GradeTypeMajorExam.Name:
		return "Klassenarbeit"
	case GradeTypeTest.Name:
		return "Test"
	case GradeTypeHomework.Name:
		return "Hausaufgabe"
	case GradeTypeOral.Name:
		return "Mündliche Mitarbeit"
	default:
		return t.Name
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE
// Оценка принадлежит тройке (Subject x SchoolYear x Semester) и не может
// пережить свой предмет. Значение валидируется при создании против системы
// СВОЕГО учебного года, а не текущего выбора пользователя.
// ══════════════════════════════════════════════════════════════════════════════

// Grade представляет одну оценку по предмету в конкретном периоде.
type Grade struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// SubjectID - идентификатор предмета-владельца.
	SubjectID string

	// Type - тип оценки (определяет вес).
	Type GradeType

	// Value - числовое значение в системе своего учебного года.
	Value float64

	// Year - учебный год, к которому относится оценка.
	Year period.SchoolYear

	// Semester - полугодие, к которому относится оценка.
	Semester period.Semester

	// Date - необязательная дата получения оценки.
	Date *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// NewGradeParams содержит параметры для создания оценки.
type NewGradeParams struct {
	ID        string
	SubjectID string
	Type      GradeType
	Value     float64
	Year      period.SchoolYear
	Semester  period.Semester
	Date      *time.Time
}

// NewGrade создаёт оценку с валидацией.
// Значение проверяется против диапазона системы учебного года оценки:
// недопустимое значение отвергается при вводе, а не при агрегации.
func NewGrade(params NewGradeParams) (*Grade, error) {
	if params.ID == "" {
		return nil, errors.New("grade id is required")
	}
	if params.SubjectID == "" {
		return nil, errors.New("grade subject id is required")
	}
	if params.Type.Weight <= 0 {
		return nil, ErrUnknownGradeType
	}
	if !params.Semester.IsValid() {
		return nil, errors.New("invalid semester")
	}
	if !params.Year.System.Contains(params.Value) {
		return nil, ErrValueOutOfRange
	}

	return &Grade{
		ID:        params.ID,
		SubjectID: params.SubjectID,
		Type:      params.Type,
		Value:     params.Value,
		Year:      params.Year,
		Semester:  params.Semester,
		Date:      params.Date,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WeightedValue возвращает значение, умноженное на вес типа.
func (g *Grade) WeightedValue() float64 {
	return g.Value * g.Type.Weight
}

// ══════════════════════════════════════════════════════════════════════════════
// FINAL GRADE
// Необязательная итоговая оценка за период. Вводится пользователем,
// не вычисляется, и полностью замещает вычисленное среднее.
// ══════════════════════════════════════════════════════════════════════════════

// FinalGrade представляет итоговую оценку предмета за период.
type FinalGrade struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// SubjectID - идентификатор предмета-владельца.
	SubjectID string

	// Value - значение в системе своего учебного года.
	Value float64

	// Year - учебный год.
	Year period.SchoolYear

	// Semester - полугодие.
	Semester period.Semester

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewFinalGrade создаёт итоговую оценку с той же валидацией диапазона,
// что и у обычной оценки.
func NewFinalGrade(id, subjectID string, value float64, year period.SchoolYear, semester period.Semester) (*FinalGrade, error) {
	if id == "" {
		return nil, errors.New("final grade id is required")
	}
	if subjectID == "" {
		return nil, errors.New("final grade subject id is required")
	}
	if !semester.IsValid() {
		return nil, errors.New("invalid semester")
	}
	if !year.System.Contains(value) {
		return nil, ErrValueOutOfRange
	}

	now := time.Now().UTC()
	return &FinalGrade{
		ID:        id,
		SubjectID: subjectID,
		Value:     value,
		Year:      year,
		Semester:  semester,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
