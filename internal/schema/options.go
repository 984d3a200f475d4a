package schema

type options struct {
	maxChoices int
	policy     Policy
}

// Option configures a Builder or MergeAll.
type Option func(*options)

// WithMaxChoices sets the tally cap. Values <= 0 select DefaultMaxChoices.
func WithMaxChoices(n int) Option {
	return func(o *options) {
		o.maxChoices = n
	}
}

// WithPolicy sets the unification policy used by MergeAll and Finalize.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func buildOptions(opts []Option) options {
	o := options{maxChoices: DefaultMaxChoices}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxChoices <= 0 {
		o.maxChoices = DefaultMaxChoices
	}
	return o
}
