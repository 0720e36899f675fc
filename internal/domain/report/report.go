// Package report накапливает результаты попыток создания сессий за один запуск
// и сводит их в итоговую статистику. Collector передаётся в оркестратор явно.
package report

import "sync"

// Record — итог обработки одной пары (формат, телефон).
type Record struct {
	Library string
	Phone   string
	Success bool
}

// LibraryStat — успехи формата относительно числа обработанных пар.
type LibraryStat struct {
	Library string
	Success int
	Total   int
}

// Summary — агрегат по всем записям.
type Summary struct {
	Total      int
	Success    int
	Failed     int
	Rate       float64 // доля успехов в процентах; 0 при пустом наборе
	PerLibrary []LibraryStat
}

// Collector — потокобезопасный накопитель записей в порядке поступления.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// NewCollector создаёт пустой накопитель.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

// Records возвращает копию накопленных записей.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len возвращает число записей.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Summary считает итоги. PerLibrary упорядочен по первому появлению формата.
func (c *Collector) Summary() Summary {
	records := c.Records()

	var s Summary
	index := make(map[string]int)
	for _, r := range records {
		s.Total++
		i, ok := index[r.Library]
		if !ok {
			i = len(s.PerLibrary)
			index[r.Library] = i
			s.PerLibrary = append(s.PerLibrary, LibraryStat{Library: r.Library})
		}
		s.PerLibrary[i].Total++
		if r.Success {
			s.Success++
			s.PerLibrary[i].Success++
		}
	}
	s.Failed = s.Total - s.Success
	if s.Total > 0 {
		s.Rate = float64(s.Success) / float64(s.Total) * 100
	}
	return s
}
