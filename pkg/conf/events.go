package conf

// OnDidChange calls cb with the new and old value at key whenever a write or
// an external edit changes it. The returned function unsubscribes.
func (s *Store) OnDidChange(key string, cb func(newValue, oldValue any)) (func(), error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(func() (any, error) {
		return s.Get(key)
	}, cb)
}

// OnDidAnyChange calls cb with the new and old document whenever anything in
// it changes. The returned function unsubscribes.
func (s *Store) OnDidAnyChange(cb func(newDoc, oldDoc Document)) (func(), error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(func() (any, error) {
		return s.Store()
	}, func(newValue, oldValue any) {
		cb(asDocument(newValue), asDocument(oldValue))
	})
}

// Batch runs fn and delivers the change notifications of all writes it makes
// as one signal when it returns. Writes still reach the file as they happen.
func (s *Store) Batch(fn func() error) error {
	s.batchDepth.Add(1)
	defer func() {
		if s.batchDepth.Add(-1) == 0 && s.batchDirty.Swap(false) {
			s.notifier.Emit()
		}
	}()
	return fn()
}

func (s *Store) emit() {
	if s.batchDepth.Load() > 0 {
		s.batchDirty.Store(true)
		return
	}
	s.notifier.Emit()
}

func asDocument(v any) Document {
	doc, _ := v.(Document)
	return doc
}
