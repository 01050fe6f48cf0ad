package config

// Specification of requested output type.
// ENUM(bundle, tree)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtBundle:
		return ".folio"
	case OutputFmtTree:
		return ".ion"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
