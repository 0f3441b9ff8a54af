package observe

import "github.com/vango-dev/vcell/pkg/signal"

type multi []signal.Observer

// Multi fans events out to every non-nil observer, in order. It returns
// nil when given no observers.
func Multi(observers ...signal.Observer) signal.Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multi) BeginPass(cell string) func(int) {
	var ends []func(int)
	for _, o := range m {
		if end := o.BeginPass(cell); end != nil {
			ends = append(ends, end)
		}
	}
	if len(ends) == 0 {
		return nil
	}
	return func(notified int) {
		for _, end := range ends {
			end(notified)
		}
	}
}

func (m multi) Subscribed(cell string, id signal.ID, immediate bool) {
	for _, o := range m {
		o.Subscribed(cell, id, immediate)
	}
}

func (m multi) Unsubscribed(cell string, id signal.ID, deferred bool) {
	for _, o := range m {
		o.Unsubscribed(cell, id, deferred)
	}
}

func (m multi) Rejected(cell string, err error) {
	for _, o := range m {
		o.Rejected(cell, err)
	}
}
