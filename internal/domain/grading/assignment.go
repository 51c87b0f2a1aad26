package grading

import (
	"context"
	"errors"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PER-YEAR SYSTEM ASSIGNMENT
// Долговечная запись "учебный год -> система оценивания".
// Создаётся лениво при первом обращении к году, меняется только явным
// действием пользователя, автоматически никогда не удаляется.
// ══════════════════════════════════════════════════════════════════════════════

// Assignment связывает начальный год учебного года с выбранной системой.
type Assignment struct {
	// StartYear - начальный год учебного года (например, 2024 для 2024/2025).
	StartYear int

	// System - система оценивания, действующая в этом году.
	System System

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewAssignment создаёт назначение системы с валидацией.
func NewAssignment(startYear int, system System) (*Assignment, error) {
	if startYear < 2000 || startYear > 2099 {
		return nil, ErrInvalidStartYear
	}
	if !system.IsValid() {
		system = DefaultSystem
	}

	now := time.Now().UTC()
	return &Assignment{
		StartYear: startYear,
		System:    system,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence/postgres.
// ══════════════════════════════════════════════════════════════════════════════

// AssignmentRepository определяет операции над назначениями систем.
type AssignmentRepository interface {
	// Get возвращает назначение для начального года.
	// Возвращает ErrAssignmentNotFound, если записи нет.
	Get(ctx context.Context, startYear int) (*Assignment, error)

	// Set создаёт или обновляет назначение (upsert).
	Set(ctx context.Context, assignment *Assignment) error

	// All возвращает все назначения, отсортированные по году.
	All(ctx context.Context) ([]*Assignment, error)
}

// SystemForYear возвращает систему, назначенную году, с ленивым созданием
// записи: если назначения ещё нет, создаётся запись с DefaultSystem.
func SystemForYear(ctx context.Context, repo AssignmentRepository, startYear int) (System, error) {
	assignment, err := repo.Get(ctx, startYear)
	if err == nil {
		return assignment.System, nil
	}
	if !errors.Is(err, ErrAssignmentNotFound) {
		return DefaultSystem, err
	}

	assignment, err = NewAssignment(startYear, DefaultSystem)
	if err != nil {
		return DefaultSystem, err
	}
	if err := repo.Set(ctx, assignment); err != nil {
		return DefaultSystem, err
	}
	return assignment.System, nil
}
