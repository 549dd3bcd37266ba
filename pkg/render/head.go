package render

// BufferHeadContent initializes every propagator registered on s, in
// registration order, and appends the non-empty head fragments they return
// to the session's extra head. Propagators registered while it runs are
// visited too. The first failure aborts with ErrPropagatorInit and leaves
// the head content of the failing propagator unrecorded.
//
// It must run once per page render, before the first body byte.
func BufferHeadContent(s *Session) error {
	for i := 0; ; i++ {
		if err := s.Err(); err != nil {
			return err
		}
		p, ok := s.propagatorAt(i)
		if !ok {
			return nil
		}
		v, err := p.Init(s)
		if err != nil {
			return propagatorError(s.Route(), err)
		}
		if hc, ok := v.(*HeadAndContent); ok {
			if head := hc.HeadFragment(); head != "" {
				s.AppendHead(head)
			}
		}
	}
}
