package generator

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	countries      = []string{"PT", "ES", "FR", "DE", "IT", "UK", "US", "BR", "CA", "AU"}
	categories     = []string{"Electronics", "Books", "Home & Kitchen", "Clothing", "Sports", "Beauty", "Toys", "Grocery"}
	suppliers      = []string{"Acme Corp", "Globex", "Umbrella", "Initech", "Stark Industries", "Wayne Enterprises"}
	paymentMethods = []string{"credit_card", "debit_card", "paypal", "apple_pay", "google_pay"}
	emailDomains   = []string{"gmail.com", "outlook.com", "yahoo.com", "example.com", "proton.me"}

	firstNames = []string{"Ana", "João", "Maria", "Luca", "Emma", "Noah", "Olivia", "Liam", "Mia", "Tiago", "Sofia", "Mateo", "Laura", "Eva", "Gabriel", "Lucas", "Inês", "Afonso"}
	lastNames  = []string{"Silva", "Santos", "Pereira", "Costa", "Oliveira", "Gomes", "Martins", "Rodrigues", "Lopes", "Almeida", "Ferreira", "Carvalho", "Sousa", "Gonçalves"}

	productPrefixes = []string{"Ultra", "Pro", "Max", "Eco", "Smart", "Lite", "Nano", "Hyper"}
	productNouns    = map[string][]string{
		"Electronics":    {"Headphones", "Tablet", "Phone", "Camera", "Speaker", "Monitor"},
		"Books":          {"Novel", "Guide", "Handbook", "Cookbook", "Anthology", "Biography"},
		"Home & Kitchen": {"Blender", "Toaster", "Kettle", "Lamp", "Vacuum", "Mixer"},
		"Clothing":       {"T-Shirt", "Jeans", "Jacket", "Sneakers", "Dress", "Hoodie"},
		"Sports":         {"Ball", "Racket", "Mat", "Gloves", "Helmet", "Shoes"},
		"Beauty":         {"Serum", "Cream", "Lotion", "Cleanser", "Mask", "Oil"},
		"Toys":           {"Puzzle", "Action Figure", "Board Game", "Doll", "RC Car", "Lego Set"},
		"Grocery":        {"Coffee", "Tea", "Pasta", "Olive Oil", "Chocolate", "Cereal"},
	}

	slugDisallowed = regexp.MustCompile(`[^a-z0-9.]+`)
	slugDots       = regexp.MustCompile(`\.{2,}`)
)

// Config controls how many rows each synthetic dataset gets.
type Config struct {
	OutDir       string
	Customers    int
	Products     int
	Transactions int
	Seed         int64
}

// Generate writes customers.csv, products.csv and transactions.csv to the
// output directory. Transactions reference generated customer and product
// ids only, so the datasets are referentially consistent.
func Generate(cfg Config) error {
	if cfg.Customers <= 0 {
		cfg.Customers = 1000
	}
	if cfg.Products <= 0 {
		cfg.Products = 500
	}
	if cfg.Transactions <= 0 {
		cfg.Transactions = 5000
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	now := time.Now().UTC()

	if err := writeCSV(filepath.Join(cfg.OutDir, "customers.csv"),
		[]string{"id", "name", "email", "registration_date", "country"},
		cfg.Customers,
		func(i int) []string {
			name := pick(rng, firstNames) + " " + pick(rng, lastNames)
			return []string{
				strconv.Itoa(i),
				name,
				email(rng, name, i),
				randomTime(rng, now, 365*3, 200).Format("2006-01-02"),
				pick(rng, countries),
			}
		},
	); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(cfg.OutDir, "products.csv"),
		[]string{"id", "name", "category", "price", "supplier"},
		cfg.Products,
		func(i int) []string {
			category := pick(rng, categories)
			return []string{
				strconv.Itoa(i),
				pick(rng, productPrefixes) + " " + pick(rng, productNouns[category]),
				category,
				strconv.FormatFloat(3.0+rng.Float64()*996.0, 'f', 2, 64),
				pick(rng, suppliers),
			}
		},
	); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(cfg.OutDir, "transactions.csv"),
		[]string{"id", "customer_id", "product_id", "quantity", "timestamp", "payment_method"},
		cfg.Transactions,
		func(i int) []string {
			return []string{
				strconv.Itoa(i),
				strconv.Itoa(1 + rng.Intn(cfg.Customers)),
				strconv.Itoa(1 + rng.Intn(cfg.Products)),
				strconv.Itoa(1 + rng.Intn(5)),
				randomTime(rng, now, 365, 0).Format("2006-01-02T15:04:05Z"),
				pick(rng, paymentMethods),
			}
		},
	); err != nil {
		return err
	}

	log.Printf("[GENERATE] wrote %d customers, %d products, %d transactions to %s",
		cfg.Customers, cfg.Products, cfg.Transactions, cfg.OutDir)
	return nil
}

func writeCSV(path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	for i := 1; i <= rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func email(rng *rand.Rand, name string, idx int) string {
	return fmt.Sprintf("%s.%d@%s", slugASCII(name), idx, pick(rng, emailDomains))
}

// slugASCII folds accented characters to ASCII and keeps only letters,
// digits and dots, dot-separating the name parts.
func slugASCII(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	out := make([]rune, 0, len(folded))
	for _, r := range folded {
		if r < 128 {
			out = append(out, r)
		}
	}

	slug := string(out)
	slug = slugDisallowed.ReplaceAllString(replaceSpaces(slug), "")
	slug = slugDots.ReplaceAllString(slug, ".")
	return trimDots(slug)
}

func replaceSpaces(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			out = append(out, '.')
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

func trimDots(s string) string {
	for len(s) > 0 && s[0] == '.' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// randomTime returns a time between startDaysAgo and endDaysAgo before now.
func randomTime(rng *rand.Rand, now time.Time, startDaysAgo, endDaysAgo int) time.Time {
	start := now.AddDate(0, 0, -startDaysAgo)
	end := now.AddDate(0, 0, -endDaysAgo)
	window := int64(end.Sub(start).Seconds())
	if window <= 0 {
		return start
	}
	return start.Add(time.Duration(rng.Int63n(window)) * time.Second)
}
