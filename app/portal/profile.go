package portal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes where things live on the portal's search form and
// result pages. The defaults match comprasnet.ba.gov.br; a YAML override
// file lets selector drift be handled without a rebuild.
type Profile struct {
	FormURL       string `yaml:"form_url"`
	FrameSelector string `yaml:"frame_selector"`

	DateStartField string `yaml:"date_start_field"`
	DateEndField   string `yaml:"date_end_field"`
	NumberField    string `yaml:"number_field"`
	SearchButton   string `yaml:"search_button"`

	ResultsTable string `yaml:"results_table"`
	DetailBlock  string `yaml:"detail_block"`
	EventsHeader string `yaml:"events_header"`

	// Column positions in the results table. Rows with fewer than
	// MinColumns cells are skipped.
	MinColumns   int `yaml:"min_columns"`
	NumberColumn int `yaml:"number_column"`
	AgencyColumn int `yaml:"agency_column"`
	StatusColumn int `yaml:"status_column"`
	ObjectColumn int `yaml:"object_column"`

	NavTimeout  int `yaml:"nav_timeout"`  // seconds
	WaitTimeout int `yaml:"wait_timeout"` // seconds
}

func DefaultProfile() Profile {
	return Profile{
		FormURL:        "https://www.comprasnet.ba.gov.br/inter/system/Licitacao/FormularioConsultaAcompanhamento.asp",
		FrameSelector:  "#ifsys",
		DateStartField: "txtDataAberturaInicial",
		DateEndField:   "txtDataAberturaFinal",
		NumberField:    "txtNumeroLicitacao",
		SearchButton:   "#btnPesquisarAcompanhamentos",
		ResultsTable:   "#tblListaAcompanhamento",
		DetailBlock:    "#ConteudoPrint",
		EventsHeader:   "EVENTOS",
		MinColumns:     7,
		NumberColumn:   0,
		AgencyColumn:   1,
		StatusColumn:   5,
		ObjectColumn:   6,
		NavTimeout:     60,
		WaitTimeout:    30,
	}
}

// LoadProfile returns the default profile overlaid with the YAML file at
// path. An empty path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read portal profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse portal profile: %w", err)
	}

	if err := profile.validate(); err != nil {
		return profile, fmt.Errorf("invalid portal profile %s: %w", path, err)
	}

	return profile, nil
}

func (p Profile) validate() error {
	if p.FormURL == "" {
		return fmt.Errorf("form_url is required")
	}
	if p.MinColumns < 1 {
		return fmt.Errorf("min_columns must be positive")
	}
	for name, col := range map[string]int{
		"number_column": p.NumberColumn,
		"agency_column": p.AgencyColumn,
		"status_column": p.StatusColumn,
		"object_column": p.ObjectColumn,
	} {
		if col < 0 || col >= p.MinColumns {
			return fmt.Errorf("%s out of range: %d", name, col)
		}
	}
	if p.NavTimeout <= 0 || p.WaitTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
