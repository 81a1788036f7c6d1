package foundation

import (
	"reflect"
	"sync"
)

// Progress is an NSProgress.
type Progress struct {
	mu        sync.Mutex
	total     int64
	completed int64
	cancelled bool
	onCancel  func()
}

// NewProgress creates a progress object expecting total units of work.
func NewProgress(total int64) *Progress {
	return &Progress{total: total}
}

// Fraction returns the completed share of the work, 0 when no total is
// known.
func (p *Progress) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return 0
	}
	return float64(p.completed) / float64(p.total)
}

// Finished reports whether all units are complete.
func (p *Progress) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total > 0 && p.completed >= p.total
}

// Cancel marks the progress cancelled and runs the cancellation handler
// the first time it is called.
func (p *Progress) Cancel() {
	p.mu.Lock()
	if p.cancelled {
		p.mu.Unlock()
		return
	}
	p.cancelled = true
	handler := p.onCancel
	p.mu.Unlock()

	if handler != nil {
		handler()
	}
}

func installProgress(f *Foundation) {
	m := f.Space.NewMethodTable()

	m.AddClassMethod("progressWithTotalUnitCount:", "@24@0:8q16", func(_ any, args []any) (any, error) {
		return NewProgress(args[0].(int64)), nil
	})
	m.AddClassMethod("discreteProgressWithTotalUnitCount:", "@24@0:8q16", func(_ any, args []any) (any, error) {
		return NewProgress(args[0].(int64)), nil
	})

	m.AddInstanceMethod("totalUnitCount", "q16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.total, nil
	})
	m.AddInstanceMethod("setTotalUnitCount:", "v24@0:8q16", func(self any, args []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		p.total = args[0].(int64)
		p.mu.Unlock()
		return nil, nil
	})
	m.AddInstanceMethod("completedUnitCount", "q16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.completed, nil
	})
	m.AddInstanceMethod("setCompletedUnitCount:", "v24@0:8q16", func(self any, args []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		p.completed = args[0].(int64)
		p.mu.Unlock()
		return nil, nil
	})
	m.AddInstanceMethod("fractionCompleted", "d16@0:8", func(self any, _ []any) (any, error) {
		return self.(*Progress).Fraction(), nil
	})
	m.AddInstanceMethod("isFinished", "B16@0:8", func(self any, _ []any) (any, error) {
		return self.(*Progress).Finished(), nil
	})
	m.AddInstanceMethod("isCancelled", "B16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.cancelled, nil
	})
	m.AddInstanceMethod("cancellationHandler", "@?16@0:8", func(self any, _ []any) (any, error) {
		p := self.(*Progress)
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.onCancel == nil {
			return nil, nil
		}
		return p.onCancel, nil
	})
	m.AddInstanceMethod("setCancellationHandler:", "v24@0:8@?16", func(self any, args []any) (any, error) {
		p := self.(*Progress)
		handler, ok := args[0].(func())
		if args[0] != nil && !ok {
			raise(InvalidArgumentException, "cancellation handler must be a block, got %T", args[0])
		}
		p.mu.Lock()
		p.onCancel = handler
		p.mu.Unlock()
		return nil, nil
	})
	m.AddInstanceMethod("cancel", "v16@0:8", func(self any, _ []any) (any, error) {
		self.(*Progress).Cancel()
		return nil, nil
	})

	f.Space.RegisterGoType("NSProgress", "NSObject", reflect.TypeFor[*Progress](),
		func() any { return NewProgress(0) }, m)
}
