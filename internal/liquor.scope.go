package internal

// Scope is the variable frame chain of one render invocation.
//
// frames[0] is the template-global frame written by assign; block tags push
// further frames on top. Below the frames sit the caller's data and the
// engine globals, both read-only. A Scope belongs to a single render and is
// not safe for concurrent use.
type Scope struct {
	frames  []map[string]any
	data    map[string]any
	globals map[string]any
}

// NewScope creates a scope over caller data and engine globals.
// Neither map is ever written to.
func NewScope(data, globals map[string]any) *Scope {
	return &Scope{
		frames:  []map[string]any{make(map[string]any)},
		data:    data,
		globals: globals,
	}
}

// Push opens a new innermost frame. Parent bindings are not copied.
func (s *Scope) Push() {
	s.frames = append(s.frames, make(map[string]any))
}

// Pop discards the innermost frame. The template-global frame is never popped.
func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames above the template-global frame
func (s *Scope) Depth() int {
	return len(s.frames) - 1
}

// Set binds name in the innermost frame
func (s *Scope) Set(name string, value any) {
	s.frames[len(s.frames)-1][name] = value
}

// SetGlobal binds name in the template-global frame
func (s *Scope) SetGlobal(name string, value any) {
	s.frames[0][name] = value
}

// Get looks name up from the innermost frame outwards, then in caller data
// and engine globals
func (s *Scope) Get(name string) (any, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	if v, ok := s.data[name]; ok {
		return v, true
	}
	if v, ok := s.globals[name]; ok {
		return v, true
	}
	return nil, false
}

// Lookup is Get returning Undefined on a miss
func (s *Scope) Lookup(name string) any {
	if v, ok := s.Get(name); ok {
		return v
	}
	return Undefined{}
}

// GetPath resolves name followed by property accessors. Any miss along the
// way yields Undefined, never an error.
func (s *Scope) GetPath(name string, keys ...any) any {
	v := s.Lookup(name)
	for _, key := range keys {
		v = Property(v, key)
	}
	return v
}
