package news

// MaxStateEntries ограничивает размер сохраняемого множества отпечатков.
const MaxStateEntries = 5000

// State хранит отпечатки уже отправленных новостей в порядке добавления.
// Нулевое значение готово к использованию.
type State struct {
	order []Fingerprint
	index map[Fingerprint]struct{}
}

// NewState создаёт состояние из списка отпечатков (пустые и повторы пропускаются).
func NewState(fps ...Fingerprint) State {
	var s State
	for _, fp := range fps {
		s.Add(fp)
	}
	return s
}

// Contains сообщает, был ли отпечаток уже отправлен.
func (s *State) Contains(fp Fingerprint) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[fp]
	return ok
}

// Add добавляет отпечаток и возвращает true, если он новый.
func (s *State) Add(fp Fingerprint) bool {
	if fp == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[Fingerprint]struct{})
	}
	if _, ok := s.index[fp]; ok {
		return false
	}
	s.index[fp] = struct{}{}
	s.order = append(s.order, fp)
	return true
}

// Len возвращает количество отпечатков.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Recent возвращает не более n последних добавленных отпечатков, от старых к новым.
func (s *State) Recent(n int) []Fingerprint {
	if s == nil || n <= 0 {
		return nil
	}
	start := 0
	if len(s.order) > n {
		start = len(s.order) - n
	}
	out := make([]Fingerprint, len(s.order)-start)
	copy(out, s.order[start:])
	return out
}

// Clone возвращает независимую копию.
func (s *State) Clone() State {
	if s == nil {
		return State{}
	}
	return NewState(s.order...)
}
