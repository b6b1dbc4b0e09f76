package core

// FieldDef describes one amount field a property can carry.
type FieldDef struct {
	Key   string
	Label string
}

// propertySchema is the single authoritative mapping from property name to
// its ordered set of amount fields. Aggregation, validation and export all
// consume this registry; it is never duplicated elsewhere.
var propertySchema = map[string][]string{
	"Colina B1":                    {"condominio", "luz", "agua", "iptu"},
	"Porto Trapiche":               {"condominio", "luz", "internet", "iptu"},
	"D'Azur":                       {"condominio", "luz", "gas", "sky", "iptu"},
	"Praia do Forte":               {"condominio", "luz", "iptu"},
	"Hangar":                       {"condominio", "luz", "internet", "iptu"},
	"Apartamento 1201":             {"amortizacao", "parcelaMensal"},
	"Apartamento 1401":             {"amortizacao", "parcelaMensal"},
	"Apartamento 1402":             {"amortizacao", "parcelaMensal"},
	"Apartamento 1906":             {"amortizacao", "parcelaMensal"},
	"Apartamento 913":              {"parcelaMensal"},
	"Apartamento 1507":             {"parcelaMensal"},
	"Apartamento 1508":             {"parcelaMensal"},
	"Apartamento 1802":             {"parcelaMensal"},
	"FIP Número 140":               {"parcelaMensal"},
	"Andre Contador":               {"patrimonial", "mouraFacility", "mjb"},
	"Plano de Saúde":               {"familiaMoura"},
	"Despesas Cauã":                {"condominio", "faculdade", "luz", "internet", "aluguel", "caucao"},
	"RANGER SPORT":                 {"ipva", "seguro", "licenciamento"},
	"BMW X3":                       {"ipva", "seguro", "licenciamento"},
	"BMW X1":                       {"ipva", "seguro", "licenciamento", "financiamento"},
	"NIVUS":                        {"ipva", "seguro", "licenciamento"},
	"T-CROSS":                      {"ipva", "seguro", "licenciamento"},
	"RANGER EVOQUE":                {"ipva", "seguro", "licenciamento"},
	"Seguro de Vida Família Moura": {"josue", "mariana", "beatriz", "caua"},
	"Seguro Patrimonial":           {"colinaB1", "portoTrapiche", "dAzur", "praiaDoForte", "rcMouraFacility", "lanchaRole", "boteCaua"},
	"Jairo Santana":                {"salario", "fgts", "alimentacao", "transporte", "ferias"},
	"Aluguel Bahia Marina":         {"vagaLanchaRole", "vagaBoteCaua"},
}

var fieldLabels = map[string]string{
	"condominio":      "Condomínio",
	"luz":             "Luz",
	"agua":            "Água",
	"internet":        "Internet",
	"gas":             "Gás",
	"iptu":            "IPTU",
	"sky":             "SKY",
	"amortizacao":     "Amortização",
	"parcelaMensal":   "Parcela Mensal",
	"patrimonial":     "Patrimonial",
	"mouraFacility":   "Moura Facility",
	"mjb":             "MJB",
	"familiaMoura":    "Família Moura",
	"faculdade":       "Faculdade",
	"aluguel":         "Aluguel",
	"caucao":          "Caução",
	"ipva":            "IPVA",
	"seguro":          "Seguro",
	"licenciamento":   "Licenciamento",
	"financiamento":   "Financiamento",
	"josue":           "Josué",
	"mariana":         "Mariana",
	"beatriz":         "Beatriz",
	"caua":            "Cauã",
	"colinaB1":        "Colina B1",
	"portoTrapiche":   "Porto Trapiche",
	"dAzur":           "D'Azur",
	"praiaDoForte":    "Praia do Forte",
	"rcMouraFacility": "RC Moura Facility",
	"lanchaRole":      "Lancha Rolé",
	"boteCaua":        "Bote Cauã",
	"salario":         "Salário",
	"fgts":            "FGTS",
	"alimentacao":     "Alimentação",
	"transporte":      "Transporte",
	"ferias":          "Férias",
	"vagaLanchaRole":  "Vaga S/058- Lancha Rolê",
	"vagaBoteCaua":    "Vaga S/097- Bote Cauã",
}

// propertyOrder fixes the display order of properties; map iteration order
// would otherwise leak into reports.
var propertyOrder = []string{
	"Colina B1", "Porto Trapiche", "D'Azur", "Praia do Forte",
	"Hangar", "Apartamento 1201", "Apartamento 1401", "Apartamento 1402",
	"Apartamento 1906", "Apartamento 913", "Apartamento 1507", "Apartamento 1508",
	"Apartamento 1802", "FIP Número 140", "Andre Contador", "Plano de Saúde",
	"Despesas Cauã", "RANGER SPORT", "BMW X3", "BMW X1", "NIVUS", "T-CROSS",
	"RANGER EVOQUE", "Seguro de Vida Família Moura", "Seguro Patrimonial",
	"Jairo Santana", "Aluguel Bahia Marina",
}

// FieldKeysFor returns the ordered amount-field keys valid for a property.
// Unknown properties yield nil: the aggregator stays permissive about
// legacy categories instead of erroring.
func FieldKeysFor(property string) []string {
	return propertySchema[property]
}

// FieldsFor returns the ordered field definitions for a property.
func FieldsFor(property string) []FieldDef {
	keys := propertySchema[property]
	if keys == nil {
		return nil
	}
	defs := make([]FieldDef, len(keys))
	for i, k := range keys {
		defs[i] = FieldDef{Key: k, Label: LabelFor(k)}
	}
	return defs
}

// LabelFor returns the display label for a field key, falling back to the
// key itself for fields the registry does not know.
func LabelFor(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}

// KnownProperty reports whether the property has a registered schema.
func KnownProperty(property string) bool {
	_, ok := propertySchema[property]
	return ok
}

// Properties returns all registered property names in display order.
func Properties() []string {
	out := make([]string, len(propertyOrder))
	copy(out, propertyOrder)
	return out
}
