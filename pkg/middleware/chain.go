package middleware

import "github.com/vango-dev/ssr/pkg/render"

// Chain fans render callbacks out to several observers, in order.
// Nil entries are skipped.
type Chain []render.Observer

// RenderStarted implements render.Observer.
func (c Chain) RenderStarted(s *render.Session, mode render.Mode) {
	for _, o := range c {
		if o != nil {
			o.RenderStarted(s, mode)
		}
	}
}

// ChunkWritten implements render.Observer.
func (c Chain) ChunkWritten(s *render.Session, mode render.Mode, n int) {
	for _, o := range c {
		if o != nil {
			o.ChunkWritten(s, mode, n)
		}
	}
}

// RenderFinished implements render.Observer.
func (c Chain) RenderFinished(s *render.Session, mode render.Mode, err error) {
	for _, o := range c {
		if o != nil {
			o.RenderFinished(s, mode, err)
		}
	}
}
