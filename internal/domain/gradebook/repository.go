package gradebook

import (
	"context"

	"github.com/deinadmin/school-grade-hub/internal/domain/period"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с долговечным хранилищем.
// Реализации находятся в infrastructure/persistence/postgres.
// Семантика одного писателя: все мутации сериализуются через командный
// слой, запросы видят согласованное состояние на момент вызова.
// ══════════════════════════════════════════════════════════════════════════════

// SubjectRepository определяет операции над предметами.
type SubjectRepository interface {
	// Create создаёт новый предмет.
	// Возвращает ErrSubjectAlreadyExists, если имя уже занято.
	Create(ctx context.Context, subject *Subject) error

	// GetByID возвращает предмет по внутреннему ID.
	// Возвращает ErrSubjectNotFound, если предмет не найден.
	GetByID(ctx context.Context, id string) (*Subject, error)

	// GetByName возвращает предмет по имени.
	// Возвращает ErrSubjectNotFound, если предмет не найден.
	GetByName(ctx context.Context, name string) (*Subject, error)

	// GetAll возвращает все предметы, отсортированные по имени.
	GetAll(ctx context.Context) ([]*Subject, error)

	// Update обновляет данные предмета.
	// Возвращает ErrSubjectNotFound, если предмет не найден.
	Update(ctx context.Context, subject *Subject) error

	// Delete атомарно удаляет предмет вместе со ВСЕМИ его оценками и
	// итоговыми оценками (каскад). Никакой параллельный читатель не должен
	// наблюдать осиротевшие оценки.
	// Возвращает ErrSubjectNotFound, если предмет не найден.
	Delete(ctx context.Context, id string) error

	// Count возвращает общее количество предметов.
	Count(ctx context.Context) (int, error)
}

// GradeRepository определяет операции над оценками.
type GradeRepository interface {
	// Create сохраняет новую оценку.
	Create(ctx context.Context, grade *Grade) error

	// GetByID возвращает оценку по ID.
	// Возвращает ErrGradeNotFound, если оценка не найдена.
	GetByID(ctx context.Context, id string) (*Grade, error)

	// Delete удаляет оценку.
	// Возвращает ErrGradeNotFound, если оценка не найдена.
	Delete(ctx context.Context, id string) error

	// ListForSubject возвращает оценки предмета за точный период:
	// учебный год И полугодие должны совпадать, wildcard-выборок нет.
	ListForSubject(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) ([]*Grade, error)

	// ListForPeriod возвращает все оценки периода по всем предметам.
	ListForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) ([]*Grade, error)

	// CountForPeriod возвращает количество оценок периода.
	CountForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) (int, error)
}

// FinalGradeRepository определяет операции над итоговыми оценками.
type FinalGradeRepository interface {
	// Upsert создаёт или заменяет итоговую оценку предмета за период.
	Upsert(ctx context.Context, finalGrade *FinalGrade) error

	// Get возвращает итоговую оценку предмета за период.
	// Возвращает ErrFinalGradeNotFound, если записи нет.
	Get(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) (*FinalGrade, error)

	// Delete удаляет итоговую оценку предмета за период.
	// Возвращает ErrFinalGradeNotFound, если записи нет.
	Delete(ctx context.Context, subjectID string, year period.SchoolYear, semester period.Semester) error

	// ListForPeriod возвращает все итоговые оценки периода.
	ListForPeriod(ctx context.Context, year period.SchoolYear, semester period.Semester) ([]*FinalGrade, error)
}
