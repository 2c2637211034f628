package indexer

// modlandFormats is the set of Modland format directory names recognized by
// parseModlandPath. Treated as data, not logic, per spec.md's design note:
// this is a representative subset of the real archive's 300+ entry format
// list, not a verbatim reproduction.
var modlandFormats = buildFormatSet(
	"2 Bit Tracker", "2GS Pokey Tune", "2SF", "4-Mal Tracker", "669 Composer",
	"AAM", "ABK", "ADPCM PCM", "AHX", "Ancient Tracker",
	"Art Of Noise", "Asylum Music Format", "Atari Digi-Mix", "AY Emul",
	"Beathoven Synthesizer", "BeepWave", "BellSouth", "Brian Postma's Soundsystem",
	"Channel Tracker", "ChipTracker", "Composer 669", "Core Design",
	"Cybertracker", "David Whittaker", "Delitracker Custom", "DigiBooster",
	"DigiBooster Pro", "Disorder Tracker 2", "DSIK Internal Format",
	"Dynamic Synthesizer Interface Kernel", "Dynamic Studio Professional",
	"EarAche", "Easy Player", "Face The Music", "Famitracker",
	"Fashion Tracker", "Fasttracker", "Fasttracker 2", "Follin Player II",
	"FuChip Tracker", "Future Composer 1.3", "Future Composer 1.4",
	"Future Player", "Game Music Creator", "GT Game Systems",
	"Hippel", "Hippel 7V", "Hippel COSO", "Hippel ST",
	"Howie Davies", "Images Music System", "Impulse Tracker",
	"Infogrames", "JamCracker", "Ken's AMC", "Kris Hatlelid",
	"MED", "MultiMedia Sound", "MultiTracker", "Music Assembler",
	"MVS Tracker", "Octalyser", "Oktalyzer", "OnEscapee",
	"Poly Tracker", "Powertracker", "Pretracker", "ProPacker",
	"Protracker", "Protracker IFF", "Pumatracker", "Quadra Composer",
	"Rob Hubbard", "Rob Hubbard ST", "SCUMM", "SID",
	"Sean Connolly", "Silicon Dreams", "Sonic Arranger",
	"Soundtracker", "Soundtracker 2.6", "Special FX",
	"Speedy A1 System", "Speedy System", "STMIK", "Startrekker",
	"Symphonie", "Symphonie Pro", "Tetramed", "TFMX",
	"TFMX 1.5", "TFMX ST", "The Musical Enlightenment",
	"Think Track", "Triton", "Ultratracker", "UNIC Tracker",
	"UNIS 669", "Velvet Studio", "Vision Of Darkness",
	"Wally Beben", "YM", "YMST",
)

func buildFormatSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
