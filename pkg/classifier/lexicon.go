package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the keyword and pattern sets the classifier matches against.
// The lists are data, not code: deployments tune them in a YAML file while
// the scoring logic stays fixed.
type Lexicon struct {
	DomainKeywords    []string `yaml:"domain_keywords"`
	OffDomainKeywords []string `yaml:"off_domain_keywords"`
	QuestionPatterns  []string `yaml:"question_patterns"`
	ComplexTerms      []string `yaml:"complex_terms"`
}

// DefaultLexicon returns the built-in IT-support lexicon.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		DomainKeywords: []string{
			// Hardware
			"komputer", "laptop", "pc", "hardware", "ram", "processor", "cpu", "gpu", "motherboard",
			"harddisk", "ssd", "hdd", "power supply", "cooling", "fan", "thermal", "overclock",
			// Software
			"software", "aplikasi", "program", "windows", "linux", "macos", "android", "ios",
			"driver", "update", "install", "uninstall", "antivirus", "firewall", "registry",
			// Networking
			"internet", "wifi", "network", "jaringan", "router", "modem", "dns", "ip", "ping",
			"bandwidth", "speed", "connection", "ethernet", "lan", "wan", "vpn", "port",
			// Troubleshooting
			"error", "bug", "crash", "freeze", "slow", "lambat", "lemot", "hang", "restart", "reboot",
			"recovery", "backup", "restore", "format", "troubleshoot", "debug", "fix",
			// Web development
			"website", "html", "css", "javascript", "php", "mysql", "database", "server",
			"hosting", "domain", "ssl", "https", "api", "framework", "responsive",
			// Security
			"password", "security", "malware", "virus", "hack", "phishing", "spam",
			"encryption", "vulnerability",
			// Mobile
			"smartphone", "iphone", "tablet", "mobile", "app", "playstore",
			"appstore", "root", "jailbreak", "custom rom", "firmware",
			// General IT
			"teknologi", "digital", "cyber", "data", "cloud", "storage", "sync",
			"email", "printer", "scanner", "usb", "bluetooth", "wireless",
		},
		OffDomainKeywords: []string{
			"politik", "agama", "gosip", "artis", "selebriti", "musik", "film", "olahraga",
			"sepak bola", "basket", "kuliner", "makanan", "resep", "kesehatan", "obat",
			"dokter", "rumah sakit", "penyakit", "cinta", "pacaran", "nikah", "keluarga", "galau",
			"keuangan", "investasi", "saham", "crypto", "bitcoin", "trading", "bisnis",
			"jual", "beli", "harga", "diskon", "promo", "travel", "wisata", "liburan",
		},
		QuestionPatterns: []string{
			`bagaimana cara.*?(install|update|fix|repair|setting|konfigurasi)`,
			`kenapa.*?(error|crash|lambat|lemot|hang|freeze|tidak bisa|putus)`,
			`gimana.*?(mengatasi|memperbaiki|setting|install)`,
			`apa itu.*?(software|hardware|aplikasi|program|virus)`,
			`cara.*?(mengatasi|memperbaiki|install|update|setting)`,
			`masalah.*?(komputer|laptop|internet|jaringan|software)`,
			`solusi.*?(error|crash|lambat|hang|freeze)`,
		},
		ComplexTerms: []string{
			"error", "crash", "freeze", "hang", "blue screen", "bsod",
			"tidak bisa boot", "gagal install", "corrupt", "rusak",
			"virus", "malware", "recovery", "backup restore",
			"registry", "system file", "driver bermasalah",
			"troubleshoot", "diagnosa", "advanced", "komplex",
		},
	}
}

// LoadLexicon reads a lexicon from a YAML file. Empty lists fall back to
// the built-in defaults, so a file may override only some of the sets.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	lex := &Lexicon{}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	def := DefaultLexicon()
	if len(lex.DomainKeywords) == 0 {
		lex.DomainKeywords = def.DomainKeywords
	}
	if len(lex.OffDomainKeywords) == 0 {
		lex.OffDomainKeywords = def.OffDomainKeywords
	}
	if len(lex.QuestionPatterns) == 0 {
		lex.QuestionPatterns = def.QuestionPatterns
	}
	if len(lex.ComplexTerms) == 0 {
		lex.ComplexTerms = def.ComplexTerms
	}
	return lex, nil
}
