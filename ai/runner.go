package ai

import "sync"

// runGuard общая механика запусков стратегий: один активный запуск,
// кооперативная отмена и гарантия "после Stop коллбеки не приходят".
//
// Каждому запуску выдаётся номер поколения; отмена инвалидирует текущее
// поколение, а доставка коллбеков проверяет актуальность поколения под
// отдельным мьютексом доставки. cancel() дожидается завершения уже
// начатой доставки, поэтому после его возврата ни один коллбек отменённого
// запуска не выполняется.
type runGuard struct {
	mu        sync.Mutex
	deliverMu sync.Mutex
	gen       uint64
	active    bool
}

// begin регистрирует новый запуск, возвращает его поколение
func (g *runGuard) begin() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return 0, ErrAlreadyRunning
	}
	g.gen++
	g.active = true
	return g.gen, nil
}

// end помечает запуск завершённым (no-op если запуск уже отменён)
func (g *runGuard) end(gen uint64) {
	g.mu.Lock()
	if g.gen == gen {
		g.active = false
	}
	g.mu.Unlock()
}

// cancel отменяет текущий запуск. Блокируется до конца доставки,
// начатой до отмены. Безопасно вызывать в любой момент.
func (g *runGuard) cancel() {
	g.mu.Lock()
	g.gen++
	g.active = false
	g.mu.Unlock()

	g.deliverMu.Lock()
	//lint:ignore SA2001 барьер: дожидаемся уже начатой доставки
	g.deliverMu.Unlock()
}

// valid проверка кооперативной отмены между чанками работы
func (g *runGuard) valid(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen == gen
}

// deliver вызывает fn если поколение gen всё ещё актуально.
// Коллбеки не должны синхронно вызывать Stop своей стратегии.
func (g *runGuard) deliver(gen uint64, fn func()) bool {
	g.deliverMu.Lock()
	defer g.deliverMu.Unlock()

	if !g.valid(gen) {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}
