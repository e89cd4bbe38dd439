package battery

// FakeSource returns scripted readings for tests. Each Read consumes
// the next reading; the last one repeats once the script runs out.
type FakeSource struct {
	Readings []Reading
	Err      error

	index int
}

func (f *FakeSource) Read() (Reading, error) {
	if f.Err != nil {
		return Reading{}, f.Err
	}
	if len(f.Readings) == 0 {
		return Reading{}, nil
	}
	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r, nil
}
