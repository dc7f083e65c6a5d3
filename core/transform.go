package core

// Transformer mutates a Record in place before it is persisted.
type Transformer interface {
	Transform(r *Record) error
}

// Chain applies transformers in order, stopping at the first error.
func Chain(r *Record, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(r); err != nil {
			return err
		}
	}
	return nil
}
