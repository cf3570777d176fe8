package banks

import "sort"

// VFDCode é o código do próprio VFD; transferências para ele são "intra"
const VFDCode = "566"

type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var byCode = map[string]string{
	"044": "Access Bank",
	"014": "Afribank Nigeria Plc",
	"023": "Citibank Nigeria Limited",
	"050": "Ecobank Nigeria Plc",
	"011": "First Bank of Nigeria Limited",
	"214": "First City Monument Bank Limited",
	"070": "Fidelity Bank Plc",
	"058": "Guaranty Trust Bank Plc",
	"030": "Heritage Banking Company Ltd",
	"082": "Keystone Bank Limited",
	"076": "Polaris Bank Limited",
	"221": "Stanbic IBTC Bank Plc",
	"068": "Standard Chartered Bank Nigeria Limited",
	"232": "Sterling Bank Plc",
	"032": "Union Bank of Nigeria Plc",
	"033": "United Bank For Africa Plc",
	"215": "Unity Bank Plc",
	"566": "VFD Microfinance Bank",
	"035": "Wema Bank Plc",
	"057": "Zenith Bank Plc",
}

func Name(code string) (string, bool) {
	n, ok := byCode[code]
	return n, ok
}

// TransferType devolve o transfer_type esperado pelo name enquiry do VFD
func TransferType(code string) string {
	if code == VFDCode {
		return "intra"
	}
	return "inter"
}

// List devolve os bancos ordenados por nome
func List() []Bank {
	out := make([]Bank, 0, len(byCode))
	for c, n := range byCode {
		out = append(out, Bank{Code: c, Name: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
