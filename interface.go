package logbridge

// Sink receives every record the source facility has decided to dispatch.
type Sink interface {
	Handle(rec Record)
}

// Registry is the dispatch point of the source facility sinks register with.
type Registry interface {
	AddSink(s Sink)
}

// LevelSetter is implemented by registries with an adjustable output level.
type LevelSetter interface {
	SetLevel(level Level)
}

// Backend writes (message, location, tag, tier) entries. msg is a printf
// template without operands: literal percent signs arrive as "%%".
type Backend interface {
	Log(msg string, loc Location, tag Tag, tier int) error
}

// LevelChecker is implemented by backends that can cheaply tell whether a
// (tag, tier) pair would be recorded at all.
type LevelChecker interface {
	CheckLevel(tag Tag, tier int) bool
}

// Formatter renders a record into the message handed to the backend.
type Formatter interface {
	Format(rec Record) (string, error)
}
