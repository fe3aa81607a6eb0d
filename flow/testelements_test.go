package flow

type listSrc struct {
	ElementBase

	packets []Packet
	next    int
}

func newListSrc(name string, packets ...Packet) *listSrc {
	return &listSrc{
		ElementBase: MakeElementBase(name),
		packets:     packets,
	}
}

func (s *listSrc) Run() (Step, error) {
	if s.next >= len(s.packets) {
		return s.Finish()
	}

	if err := s.Put(s.packets[s.next], DefaultPort); err != nil {
		return Idle, err
	}

	s.next++

	return Progressed, nil
}

type mapper struct {
	ElementBase

	f func(Packet) Packet
}

func newMapper(name string, f func(Packet) Packet) *mapper {
	return &mapper{
		ElementBase: MakeElementBase(name),
		f:           f,
	}
}

func (m *mapper) Run() (Step, error) {
	res, err := m.Get(DefaultPort)
	if err != nil {
		return Idle, err
	}

	switch res.Status {
	case Empty:
		return Idle, nil
	case EOF:
		return m.Finish()
	}

	if err := m.Put(m.f(res.Packet), DefaultPort); err != nil {
		return Idle, err
	}

	return Progressed, nil
}

type collector struct {
	ElementBase

	got []Packet
}

func newCollector(name string) *collector {
	return &collector{ElementBase: MakeElementBase(name)}
}

func (c *collector) Run() (Step, error) {
	res, err := c.Get(DefaultPort)
	if err != nil {
		return Idle, err
	}

	switch res.Status {
	case Empty:
		return Idle, nil
	case EOF:
		return c.Finish()
	}

	c.got = append(c.got, res.Packet)

	return Progressed, nil
}

type idler struct {
	ElementBase
}

func (i *idler) Run() (Step, error) {
	return Idle, nil
}
