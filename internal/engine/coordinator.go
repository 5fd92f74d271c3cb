package engine

// SharedVars is the key/value space shared by every route of one run.
// It lives and dies with the run; parallel runs never share one.
type SharedVars struct {
	m map[string]any
}

// NewSharedVars creates an empty space.
func NewSharedVars() *SharedVars {
	return &SharedVars{m: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *SharedVars) Get(key string) (any, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set stores a value under key. Within one candle step the write is
// visible to routes visited after the writer, never to routes already
// visited.
func (s *SharedVars) Set(key string, value any) {
	s.m[key] = value
}

// Len returns the number of stored keys.
func (s *SharedVars) Len() int {
	return len(s.m)
}
