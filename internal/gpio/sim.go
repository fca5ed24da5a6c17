package gpio

import "sync"

// SimDriver is an in-memory pin bank for tests and desktop runs. External
// stimulus is injected with SetLevel.
type SimDriver struct {
	mu   sync.Mutex
	pins map[int]*SimPin
}

func NewSimDriver() *SimDriver {
	return &SimDriver{pins: make(map[int]*SimPin)}
}

func (d *SimDriver) Pin(number int) Pin {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pins[number]
	if !ok {
		p = &SimPin{number: number}
		d.pins[number] = p
	}
	return p
}

func (d *SimDriver) Close() error { return nil }

// SetLevel drives the electrical level of a pin from outside the module,
// simulating the attached sensor.
func (d *SimDriver) SetLevel(number int, level bool) {
	d.Pin(number).(*SimPin).setLevel(level)
}

// Level reads the current electrical level of a pin.
func (d *SimDriver) Level(number int) bool {
	return d.Pin(number).Read()
}

// SimPin records direction and level and keeps a trace of written levels so
// tests can assert pulse shapes.
type SimPin struct {
	mu      sync.Mutex
	number  int
	dir     Direction
	level   bool
	History []bool
}

func (p *SimPin) SetDirection(dir Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dir = dir
}

func (p *SimPin) Direction() Direction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dir
}

func (p *SimPin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimPin) Write(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.History = append(p.History, level)
}

func (p *SimPin) setLevel(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}
