package schema

type number interface {
	~int64 | ~float64
}

// stats is a running min/max/mean over numeric observations.
type stats[T number] struct {
	N    int64   `json:"n"`
	Min  T       `json:"min"`
	Max  T       `json:"max"`
	Mean float64 `json:"mean"`
}

func (s *stats[T]) observe(v T) {
	if s.N == 0 {
		s.N, s.Min, s.Max, s.Mean = 1, v, v, float64(v)
		return
	}
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
	s.Mean = (s.Mean*float64(s.N) + float64(v)) / float64(s.N+1)
	s.N++
}

func (s *stats[T]) merge(o stats[T]) {
	switch {
	case o.N == 0:
		return
	case s.N == 0:
		*s = o
		return
	}
	n := s.N + o.N
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
	s.Mean = (s.Mean*float64(s.N) + o.Mean*float64(o.N)) / float64(n)
	s.N = n
}

// asFloats widens integer stats for numeric widening.
func (s stats[T]) asFloats() stats[float64] {
	return stats[float64]{N: s.N, Min: float64(s.Min), Max: float64(s.Max), Mean: s.Mean}
}
