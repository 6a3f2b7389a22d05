package gpu

// PingPong tracks which of two buffers is the front (last written, read by
// the next simulation tick) and which is the back (written next).
type PingPong struct {
	front int
}

// Front is the buffer the next tick reads
func (p *PingPong) Front() int { return p.front }

// Back is the buffer the next tick writes
func (p *PingPong) Back() int { return 1 - p.front }

// Swap makes the freshly written back buffer the new front
func (p *PingPong) Swap() { p.front = 1 - p.front }
