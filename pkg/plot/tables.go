package plot

// Clause tables in the manner of Plotto: a plot is a protagonist (A clause),
// an initiating situation (B clause) and a resolution (C clause). Symbols in
// braces are replaced by cast names.

var protagonists = []string{
	"{A}, a person influenced by an obligation",
	"{A}, a person who longs for a quiet life",
	"{A}, an ambitious person",
	"{A}, a person burdened by a secret",
	"{A}, an idealist",
	"{A}, a person of humble origins",
	"{A}, a stranger in a strange place",
	"{A}, a person who has lost everything",
}

var situations = []string{
	"falls in love with {B}, whose family is at odds with {C}",
	"discovers that {C} has been deceiving {B}",
	"is accused by {C} of a crime committed by {B}",
	"must choose between loyalty to {B} and a promise made to {C}",
	"seeks revenge on {C} for a wrong done to {B}",
	"inherits a fortune that {C} claims belongs to {B}",
	"receives a message from {B} that {C} is determined to intercept",
	"pretends to be someone else in order to help {B} escape {C}",
	"is rescued by {B} and falls into debt to {C}",
	"undertakes a dangerous journey with {B} while pursued by {C}",
}

var resolutions = []string{
	"and, through a sacrifice, wins the trust of {B}",
	"and learns that {C} was acting out of fear all along",
	"and, exposing the truth, frees {B} from suspicion",
	"and is reconciled with {C} after a bitter struggle",
	"and loses {B} but gains a new understanding of duty",
	"and, outwitting {C}, finds a new beginning with {B}",
	"and discovers that {B} and {C} were once allies",
	"and renounces ambition to save {B}",
}

var roles = map[string][]string{
	"A": {"the protagonist"},
	"B": {"the protagonist's love interest", "the protagonist's friend", "the protagonist's sibling", "a stranger in need"},
	"C": {"the antagonist", "a rival", "a jealous relative", "a corrupt official"},
}

var names = []string{
	"Ada", "Bo", "Cyrus", "Delia", "Emeric", "Fen", "Greta", "Hollis",
	"Ines", "Jared", "Kestrel", "Lio", "Mara", "Nils", "Orla", "Pim",
	"Quill", "Rosalind", "Sven", "Tamsin", "Ulric", "Vera", "Wren", "Yusuf",
}
