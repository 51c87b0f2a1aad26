package snapshot

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// STORE INTERFACES
// Контракт межпроцессного хранилища снапшотов. Реализация находится в
// infrastructure/persistence/redis. Писатель один (основной процесс),
// читатель - отдельный процесс-рендерер со своим расписанием.
// ══════════════════════════════════════════════════════════════════════════════

// Publisher записывает производный снапшот в общее хранилище.
type Publisher interface {
	// Publish записывает все поля снапшота, проставляет LastUpdate = now
	// и отправляет сигнал "перерисуйся" процессу-читателю. Сигнал
	// best-effort: он может быть склеен платформой или не дойти вовсе.
	Publish(ctx context.Context, widget Widget) error

	// Clear удаляет все ключи снапшота и сигналит перерисовку пустого
	// состояния. Единственный путь обратно в состояние Uninitialized.
	Clear(ctx context.Context) error
}

// Reader читает снапшот из общего хранилища.
type Reader interface {
	// Read возвращает последний опубликованный снапшот. Чтение тотально:
	// недоступное хранилище или отсутствие публикаций дают корректный
	// пустой снапшот, а не ошибку - у читателя нет пути восстановления.
	Read(ctx context.Context) Widget

	// ValidateAccess пишет тестовое значение и сразу читает его обратно.
	// Только для диагностики, не для горячего пути.
	ValidateAccess(ctx context.Context) bool
}

// Store объединяет обе стороны контракта.
type Store interface {
	Publisher
	Reader
}
