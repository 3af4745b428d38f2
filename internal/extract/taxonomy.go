package extract

import (
	"strings"

	"skillmatch-backend/internal/textnorm"
)

// Skill categories.
const (
	CategoryProgramming = "programming_languages"
	CategoryWeb         = "web_technologies"
	CategoryDatabases   = "databases"
	CategoryCloudDevops = "cloud_devops"
	CategorySoft        = "soft_skills"
)

// Categories lists all skill categories in stable order.
var Categories = []string{
	CategoryProgramming,
	CategoryWeb,
	CategoryDatabases,
	CategoryCloudDevops,
	CategorySoft,
}

type taxonomyEntry struct {
	Canonical string
	Category  string
	Synonyms  []string
}

// Taxonomy maps surface forms to canonical skills. Lookup keys are folded
// (lowercase, diacritics stripped) so matching is case- and
// diacritic-insensitive.
type Taxonomy struct {
	byForm    map[string]taxonomyEntry
	markers   map[string]struct{}
	maxPhrase int
}

// NewTaxonomy builds the compiled-in bilingual taxonomy.
func NewTaxonomy() *Taxonomy {
	t := &Taxonomy{
		byForm:  make(map[string]taxonomyEntry, 256),
		markers: make(map[string]struct{}, 16),
	}
	for _, e := range seedEntries {
		t.add(e)
	}
	// Section headers name a category, not a skill. They are consumed by the
	// matcher and produce nothing.
	for _, m := range []string{
		"programming languages", "lenguajes de programacion",
		"web technologies", "tecnologias web",
		"databases", "bases de datos",
		"cloud devops", "soft skills", "habilidades blandas",
	} {
		t.markers[m] = struct{}{}
		if n := phraseLen(m); n > t.maxPhrase {
			t.maxPhrase = n
		}
	}
	return t
}

func (t *Taxonomy) add(e taxonomyEntry) {
	forms := append([]string{e.Canonical}, e.Synonyms...)
	for _, form := range forms {
		key := textnorm.Fold(form)
		t.byForm[key] = e
		if n := phraseLen(key); n > t.maxPhrase {
			t.maxPhrase = n
		}
	}
}

// Lookup resolves a folded phrase to its canonical skill and category.
func (t *Taxonomy) Lookup(folded string) (name, category string, ok bool) {
	e, ok := t.byForm[folded]
	if !ok {
		return "", "", false
	}
	return e.Canonical, e.Category, true
}

// IsMarker reports whether a folded phrase is a category header.
func (t *Taxonomy) IsMarker(folded string) bool {
	_, ok := t.markers[folded]
	return ok
}

// MaxPhraseLen is the longest surface form in tokens.
func (t *Taxonomy) MaxPhraseLen() int {
	return t.maxPhrase
}

func phraseLen(s string) int {
	return len(strings.Fields(s))
}

var seedEntries = []taxonomyEntry{
	// Programming languages.
	{"Go", CategoryProgramming, []string{"golang"}},
	{"Python", CategoryProgramming, nil},
	{"Java", CategoryProgramming, nil},
	{"JavaScript", CategoryProgramming, []string{"js"}},
	{"TypeScript", CategoryProgramming, []string{"ts"}},
	{"C#", CategoryProgramming, []string{"c sharp", "csharp"}},
	{"C++", CategoryProgramming, []string{"cpp"}},
	{"Ruby", CategoryProgramming, nil},
	{"PHP", CategoryProgramming, nil},
	{"Kotlin", CategoryProgramming, nil},
	{"Swift", CategoryProgramming, nil},
	{"Rust", CategoryProgramming, nil},
	{"Scala", CategoryProgramming, nil},

	// Web technologies.
	{"React", CategoryWeb, []string{"reactjs", "react.js"}},
	{"Angular", CategoryWeb, []string{"angularjs"}},
	{"Vue", CategoryWeb, []string{"vuejs", "vue.js"}},
	{"Node.js", CategoryWeb, []string{"node", "nodejs"}},
	{"Next.js", CategoryWeb, []string{"nextjs"}},
	{"Django", CategoryWeb, nil},
	{"Flask", CategoryWeb, nil},
	{"Spring", CategoryWeb, []string{"spring boot"}},
	{"Rails", CategoryWeb, []string{"ruby on rails"}},
	{"Laravel", CategoryWeb, nil},
	{"Express", CategoryWeb, []string{"expressjs", "express.js"}},
	{"GraphQL", CategoryWeb, nil},
	{"REST", CategoryWeb, []string{"rest api", "apis rest"}},
	{"HTML", CategoryWeb, []string{"html5"}},
	{"CSS", CategoryWeb, []string{"css3"}},

	// Databases.
	{"MySQL", CategoryDatabases, nil},
	{"PostgreSQL", CategoryDatabases, []string{"postgres"}},
	{"MongoDB", CategoryDatabases, []string{"mongo"}},
	{"Redis", CategoryDatabases, nil},
	{"SQL Server", CategoryDatabases, []string{"sqlserver"}},
	{"Oracle", CategoryDatabases, nil},
	{"Elasticsearch", CategoryDatabases, []string{"elastic search"}},
	{"SQLite", CategoryDatabases, nil},
	{"Cassandra", CategoryDatabases, nil},
	{"DynamoDB", CategoryDatabases, nil},

	// Cloud and devops.
	{"AWS", CategoryCloudDevops, []string{"amazon web services"}},
	{"Azure", CategoryCloudDevops, nil},
	{"GCP", CategoryCloudDevops, []string{"google cloud", "google cloud platform"}},
	{"Docker", CategoryCloudDevops, nil},
	{"Kubernetes", CategoryCloudDevops, []string{"k8s"}},
	{"Terraform", CategoryCloudDevops, nil},
	{"Jenkins", CategoryCloudDevops, nil},
	{"Git", CategoryCloudDevops, []string{"github", "gitlab"}},
	{"CI/CD", CategoryCloudDevops, []string{"cicd"}},
	{"Ansible", CategoryCloudDevops, nil},
	{"Linux", CategoryCloudDevops, nil},
	{"Nginx", CategoryCloudDevops, nil},

	// Soft skills, with Spanish surface forms.
	{"Leadership", CategorySoft, []string{"liderazgo"}},
	{"Communication", CategorySoft, []string{"comunicacion"}},
	{"Teamwork", CategorySoft, []string{"trabajo en equipo"}},
	{"Problem Solving", CategorySoft, []string{"resolucion de problemas"}},
	{"Agile", CategorySoft, []string{"metodologias agiles"}},
	{"Scrum", CategorySoft, nil},
	{"Mentoring", CategorySoft, []string{"mentoria"}},
	{"Project Management", CategorySoft, []string{"gestion de proyectos"}},
}
