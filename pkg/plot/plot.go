package plot

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"draftsmith/pkg/schema"
	"draftsmith/pkg/utils"
)

// symbols in the order the cast is listed.
var symbols = []string{"A", "B", "C"}

// Generator assembles plot skeletons from the clause tables. Equal seeds
// yield equal skeletons. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. A zero seed picks a
// random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) Generate() (schema.PlotSkeleton, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	picked := make(map[string]schema.CastMember, len(symbols))
	perm := g.rng.Perm(len(names))
	var cast []schema.CastMember
	for i, sym := range symbols {
		member := schema.CastMember{
			Name:        names[perm[i]],
			Symbol:      sym,
			Description: pick(g.rng, roles[sym]),
		}
		picked[sym] = member
		cast = append(cast, member)
	}

	clauses := []string{
		pick(g.rng, protagonists),
		pick(g.rng, situations),
		pick(g.rng, resolutions),
	}
	text := strings.Join(clauses, " ") + "."

	pairs := make([]string, 0, 2*len(picked))
	for sym, m := range picked {
		pairs = append(pairs, "{"+sym+"}", m.Name)
	}
	text = strings.NewReplacer(pairs...).Replace(text)

	return schema.PlotSkeleton{Plot: text, Cast: cast}, nil
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

// Static always returns the same skeleton.
type Static schema.PlotSkeleton

func (s Static) Generate() (schema.PlotSkeleton, error) {
	return schema.PlotSkeleton(s), nil
}

// File reads a skeleton from JSON, such as the plotto.json of an earlier run.
type File struct {
	Path string
}

func (f File) Generate() (schema.PlotSkeleton, error) {
	p, err := utils.Load[schema.PlotSkeleton](f.Path)
	if err != nil {
		return schema.PlotSkeleton{}, fmt.Errorf("load plot %s: %w", f.Path, err)
	}
	if strings.TrimSpace(p.Plot) == "" {
		return schema.PlotSkeleton{}, fmt.Errorf("load plot %s: plot text is empty", f.Path)
	}
	return p, nil
}
