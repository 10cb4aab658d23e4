package elf

// ForceDynSymPolicy controls how the dynamic symbol table's entry count
// is determined when a single .dynsym section header sits at DT_SYMTAB
// but its size disagrees with the DT_STRTAB-minus-DT_SYMTAB estimate,
// per §4.2 step 7's reconciliation. When .dynsym is absent, duplicated,
// or at another offset, the estimate is used under every policy; when
// the two sizes agree, the section size is used.
type ForceDynSymPolicy int

const (
	// DynSymAuto logs a warning and decodes no dynamic symbols when the
	// section size and the estimate disagree.
	DynSymAuto ForceDynSymPolicy = iota
	// DynSymForceSection uses the .dynsym section size when it and the
	// estimate disagree.
	DynSymForceSection
	// DynSymForceEstimate always uses the DT_STRTAB-DT_SYMTAB distance,
	// even when a section header is present.
	DynSymForceEstimate
)

// parseConfig collects the options Open/Parse accept.
type parseConfig struct {
	startOffset       int64
	onlyHeader        bool
	forceDynSymPolicy ForceDynSymPolicy
	logger            Logger
}

// Option configures a single Open/Parse call.
type Option func(*parseConfig)

// WithStartOffset parses the ELF image beginning at the given byte
// offset into data, for embedded images (e.g. firmware blobs carrying a
// trailing ELF payload).
func WithStartOffset(offset int64) Option {
	return func(c *parseConfig) { c.startOffset = offset }
}

// WithOnlyHeader stops parsing after the ELF header, skipping section,
// segment, dynamic, symbol, and relocation decoding entirely.
func WithOnlyHeader() Option {
	return func(c *parseConfig) { c.onlyHeader = true }
}

// WithForceDynSymParsing overrides the default auto-reconciliation
// policy for dynamic symbol table sizing.
func WithForceDynSymParsing(policy ForceDynSymPolicy) Option {
	return func(c *parseConfig) { c.forceDynSymPolicy = policy }
}

// WithLogger supplies a custom Logger; the default is silent unless
// ZWOELF_VERBOSE is set.
func WithLogger(l Logger) Option {
	return func(c *parseConfig) { c.logger = l }
}

func newParseConfig(opts []Option) parseConfig {
	c := parseConfig{logger: defaultLogger()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// File is a parsed ELF image together with the byte-exact state needed
// to serialize it back out. Every editing operation in this package
// mutates a File's fields directly; callers re-serialize with Bytes or
// WriteTo to obtain the edited image.
type File struct {
	data     []byte
	bitWidth int
	parsed   bool
	start    int64

	Header   Header
	Sections []Section
	Segments []Segment

	DynamicEntries  []DynamicEntry
	Symbols         []*DynamicSymbol
	Relocations     []Relocation
	JumpRelocations []Relocation

	dyn dynamicOffsets

	logger Logger
}

// requireParsed returns KindNotParsed when an operation that needs a
// fully decoded File is invoked before Parse/Open has succeeded, or
// after WithOnlyHeader skipped body parsing.
func (f *File) requireParsed() error {
	if !f.parsed {
		return newErr(KindNotParsed, "file has not been fully parsed")
	}
	return nil
}

// BitWidth reports 32 or 64, the natural word width in effect for this
// file's class.
func (f *File) BitWidth() int { return f.bitWidth }
