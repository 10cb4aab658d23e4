package elf

// e_ident indices and EI_CLASS/EI_DATA/EI_VERSION/EI_OSABI values.
const (
	eiClass   = 4
	eiData    = 5
	eiVersion = 6
	eiOSABI   = 7
	eiABIVers = 8

	ELFCLASSNONE = 0
	ELFCLASS32   = 1
	ELFCLASS64   = 2

	ELFDATANONE = 0
	ELFDATA2LSB = 1
	ELFDATA2MSB = 2

	EVNone    = 0
	EVCurrent = 1

	ELFOSABINone  = 0
	ELFOSABILinux = 3
)

// e_type values. The parser accepts only ETExec and ETDyn.
const (
	ETNone = 0
	ETRel  = 1
	ETExec = 2
	ETDyn  = 3
	ETCore = 4
)

// e_machine values.
const (
	EM386    = 3
	EMX86_64 = 0x3e
)

// Section header string table special index.
const SHNUndef = 0

// Segment (program header) types.
const (
	PTNull     = 0
	PTLoad     = 1
	PTDynamic  = 2
	PTInterp   = 3
	PTNote     = 4
	PTShlib    = 5
	PTPhdr     = 6
	PTTLS      = 7
	PTGNUStack = 0x6474e551
)

// Segment flags.
const (
	PFX = 0x1
	PFW = 0x2
	PFR = 0x4
)

// Section header types, the same tag space an ELF writer emits and this
// parser decodes.
const (
	SHTNull     = 0
	SHTProgbits = 1
	SHTSymtab   = 2
	SHTStrtab   = 3
	SHTRela     = 4
	SHTHash     = 5
	SHTDynamic  = 6
	SHTNote     = 7
	SHTNobits   = 8
	SHTRel      = 9
	SHTShlib    = 10
	SHTDynsym   = 11
)

// Section header flags.
const (
	SHFWrite     = 0x1
	SHFAlloc     = 0x2
	SHFExecinstr = 0x4
)

// Dynamic segment tags (D_tag).
const (
	DTNull     = 0
	DTNeeded   = 1
	DTPltrelsz = 2
	DTPltgot   = 3
	DTHash     = 4
	DTStrtab   = 5
	DTSymtab   = 6
	DTRela     = 7
	DTRelasz   = 8
	DTRelaent  = 9
	DTStrsz    = 10
	DTSyment   = 11
	DTInit     = 12
	DTFini     = 13
	DTSoname   = 14
	DTRpath    = 15
	DTSymbolic = 16
	DTRel      = 17
	DTRelsz    = 18
	DTRelent   = 19
	DTPltrel   = 20
	DTDebug    = 21
	DTTextrel  = 22
	DTJmprel   = 23
)

// Relocation types, x86-64 and 386 (only the ones this editor's GOT
// helpers and relocation model care about).
const (
	RX86_64None     = 0
	RX86_64GlobDat  = 6
	RX86_64JumpSlot = 7

	R386None    = 0
	R386GlobDat = 6
	R386JmpSlot = 7
)

// Symbol binding and type, packed into ElfN_Sym.st_info.
const (
	STBLocal  = 0
	STBGlobal = 1
	STBWeak   = 2

	STTNotype  = 0
	STTObject  = 1
	STTFunc    = 2
	STTSection = 3
	STTFile    = 4
)

// SymBind and SymType unpack st_info's two nibbles, mirroring the
// ELF32_ST_BIND/ELF32_ST_TYPE macros.
func SymBind(info uint8) uint8 { return info >> 4 }
func SymType(info uint8) uint8 { return info & 0xf }

// MakeSymInfo packs bind/type back into a single st_info byte.
func MakeSymInfo(bind, typ uint8) uint8 { return (bind << 4) | (typ & 0xf) }
