package twi

// Shim adapts a *Master to the tinygo driver Tx shape (tinygo.org/x/drivers
// I2C), so drivers written against that contract ride the same transaction
// driver as everything else. When both w and r are provided the read follows
// the write after a repeated start, without releasing the bus.
type Shim struct {
	m *Master
}

// NewShim wraps m.
func NewShim(m *Master) Shim { return Shim{m: m} }

// Tx performs a write followed by an optional repeated-start read.
func (s Shim) Tx(addr uint16, w, r []byte) error {
	a := byte(addr)
	if len(w) > 0 {
		if err := s.m.Start(a, Write); err != nil {
			s.m.Stop()
			return err
		}
		for _, b := range w {
			if err := s.m.WriteByte(b); err != nil {
				s.m.Stop()
				return err
			}
		}
		if len(r) == 0 {
			s.m.Stop()
			return nil
		}
	}
	if len(r) > 0 {
		if err := s.m.Start(a, Read); err != nil {
			s.m.Stop()
			return err
		}
		for i := 0; i < len(r)-1; i++ {
			r[i] = s.m.ReadByte()
		}
		r[len(r)-1] = s.m.ReadLast()
		s.m.Stop()
	}
	return nil
}
