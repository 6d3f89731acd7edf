package refdata

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest describes the reference datasets and how to read them.
type Manifest struct {
	QPV QPVDataset `yaml:"qpv"`
	ZRR ZRRDataset `yaml:"zrr"`
}

// QPVDataset points at the quartiers prioritaires geometry file.
type QPVDataset struct {
	Path  string    `yaml:"path"`
	Layer string    `yaml:"layer"` // GeoPackage feature table, defaults to the first one
	Attrs ZoneAttrs `yaml:"attributes"`
}

// ZoneAttrs names the attribute columns carrying zone identity.
type ZoneAttrs struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Commune string `yaml:"commune"`
}

// ZRRDataset points at the commune classification table.
type ZRRDataset struct {
	Path           string     `yaml:"path"`
	SkipRows       int        `yaml:"skip_rows"` // preamble lines before the header
	Sheet          string     `yaml:"sheet"`     // XLSX sheet name, defaults to the first one
	Delimiter      string     `yaml:"delimiter"` // CSV field separator, defaults to comma
	Encoding       string     `yaml:"encoding"`  // CSV charset, defaults to UTF-8
	Columns        ZRRColumns `yaml:"columns"`
	MemberPrefixes []string   `yaml:"member_prefixes"`
}

// ZRRColumns names the classification table columns, matched
// case-insensitively against the header row.
type ZRRColumns struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
	Class string `yaml:"classification"`
}

// DefaultManifest matches the official dataset exports: the QP2024
// GeoPackage from sig.ville.gouv.fr and the ZRR commune list from the
// Observatoire des territoires.
func DefaultManifest() Manifest {
	return Manifest{
		QPV: QPVDataset{
			Path:  "QP2024_France_Hexagonale_Outre_Mer_WGS84.gpkg",
			Attrs: ZoneAttrs{Code: "code_qp", Name: "lib_qp", Commune: "lib_com"},
		},
		ZRR: ZRRDataset{
			Path:     "ZRR_list_source.csv",
			SkipRows: 5,
			Columns:  ZRRColumns{Code: "CODGEO", Label: "LIBGEO", Class: "ZRR_SIMP"},
		},
	}
}

// LoadManifest reads a dataset manifest from a YAML file, layered over
// the defaults: absent keys keep their default value. Relative dataset
// paths resolve against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()

	data, err := os.ReadFile(path)
	if err != nil {
		return m, eris.Wrapf(err, "refdata: read manifest %s", path)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, eris.Wrap(err, "refdata: parse manifest")
	}

	base := filepath.Dir(path)
	m.QPV.Path = resolvePath(base, m.QPV.Path)
	m.ZRR.Path = resolvePath(base, m.ZRR.Path)
	return m, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
