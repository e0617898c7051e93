package synthetic

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/utils"
)

// Categories is the default set documents are drawn from.
var Categories = []string{
	"Environmental", "Safety", "Data Privacy", "Financial",
	"Quality", "Health", "Security", "Regulatory",
}

var Facilities = []string{"Plant A", "Plant B", "Plant C", "Warehouse 1", "Office Complex"}

type template struct {
	title      string
	body       string
	thresholds []int
}

var templates = map[string][]template{
	"Environmental": {
		{
			title:      "Air Quality Standards Compliance",
			body:       "All facilities must maintain air emissions below {threshold} ppm for particulate matter. Continuous monitoring systems must be operational 24/7. Weekly calibration of monitoring equipment is mandatory. Exceedance reports must be submitted to regulatory authorities within 48 hours. Annual third-party audits are required to verify compliance.",
			thresholds: []int{15, 20, 25, 30},
		},
		{
			title:      "Wastewater Discharge Regulations",
			body:       "Industrial wastewater discharge must not exceed {threshold} mg/L for chemical oxygen demand (COD). Daily sampling and testing is required. Treatment systems must be maintained according to manufacturer specifications. Discharge permits must be renewed every 3 years. Non-compliance triggers immediate shutdown procedures.",
			thresholds: []int{50, 75, 100, 150},
		},
		{
			title:      "Hazardous Material Storage Protocol",
			body:       "Hazardous materials must be stored in certified containers rated for {threshold} years of service life. Storage areas must have secondary containment capable of holding 110% of the largest container. Monthly inspections are mandatory. Material Safety Data Sheets (MSDS) must be accessible within 30 seconds of any storage location.",
			thresholds: []int{5, 10, 15, 20},
		},
	},
	"Safety": {
		{
			title:      "Personal Protective Equipment Requirements",
			body:       "All personnel must wear approved PPE in designated zones. Safety equipment must meet ANSI/OSHA standards. Equipment inspections must occur before each shift. Defective equipment must be removed from service immediately. Training certifications must be renewed every {threshold} months.",
			thresholds: []int{6, 12, 18, 24},
		},
		{
			title:      "Emergency Response Procedures",
			body:       "Emergency evacuation drills must be conducted every {threshold} months. All exits must remain unobstructed at all times. Fire suppression systems must be tested quarterly. Emergency contact information must be posted in all work areas. Incident response teams must be available 24/7.",
			thresholds: []int{1, 3, 6, 12},
		},
	},
	"Data Privacy": {
		{
			title:      "Data Encryption Standards",
			body:       "All sensitive data must be encrypted using AES-256 or equivalent. Encryption keys must be rotated every {threshold} days. Access logs must be maintained for 7 years. Data breach notifications must be sent within 72 hours of discovery. Regular security audits are mandatory.",
			thresholds: []int{30, 60, 90, 180},
		},
	},
	"Financial": {
		{
			title:      "Transaction Reporting Thresholds",
			body:       "All financial transactions exceeding ${threshold} must be reported to compliance officers within 24 hours. Audit trails must be maintained for all transactions. Quarterly financial reviews are required. Suspicious activity reports must be filed immediately.",
			thresholds: []int{5000, 10000, 25000, 50000},
		},
	},
}

var variations = []string{
	" Compliance with these standards is mandatory and non-negotiable.",
	" Failure to comply may result in regulatory action.",
	" All personnel must be trained on these requirements annually.",
	" Documentation must be available for inspection at all times.",
}

// Metric describes one sensor series.
type Metric struct {
	Name      string
	Unit      string
	NormalMin float64
	NormalMax float64
	Threshold float64
}

var Metrics = []Metric{
	{Name: "Air Emissions", Unit: "ppm", NormalMin: 10, NormalMax: 25, Threshold: 20},
	{Name: "Water Quality", Unit: "mg/L", NormalMin: 30, NormalMax: 70, Threshold: 75},
	{Name: "Temperature", Unit: "°C", NormalMin: 18, NormalMax: 24, Threshold: 25},
	{Name: "Pressure", Unit: "psi", NormalMin: 40, NormalMax: 60, Threshold: 65},
	{Name: "Vibration", Unit: "mm/s", NormalMin: 2, NormalMax: 8, Threshold: 10},
	{Name: "Noise Level", Unit: "dB", NormalMin: 50, NormalMax: 70, Threshold: 75},
}

// ExceedanceProbability is the share of generated readings pushed above
// threshold.
const ExceedanceProbability = 0.15

// Generator produces plausible documents and sensor logs. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New returns a generator. A zero seed seeds from the clock.
func New(seed int64, now func() time.Time) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

func (g *Generator) Document(category, id string) models.Document {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.document(category, id)
}

// Documents generates count documents with IDs DOC-{1000+offset+i}, drawing
// categories from categories (or Categories when empty).
func (g *Generator) Documents(count, offset int, categories []string) []models.Document {
	if len(categories) == 0 {
		categories = Categories
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	docs := make([]models.Document, 0, count)
	for i := 0; i < count; i++ {
		category := categories[g.rng.Intn(len(categories))]
		docs = append(docs, g.document(category, fmt.Sprintf("DOC-%d", 1000+offset+i)))
	}
	return docs
}

func (g *Generator) document(category, id string) models.Document {
	choices, ok := templates[category]
	if !ok {
		choices = []template{{
			title:      category + " Compliance Standard",
			body:       "All operations must comply with " + category + " regulations. Regular audits are required. Documentation must be maintained for a minimum of 5 years. Non-compliance may result in penalties.",
			thresholds: []int{1},
		}}
	}

	t := choices[g.rng.Intn(len(choices))]
	threshold := t.thresholds[g.rng.Intn(len(t.thresholds))]
	body := strings.ReplaceAll(t.body, "{threshold}", fmt.Sprint(threshold))
	body += variations[g.rng.Intn(len(variations))]

	daysAgo := 1 + g.rng.Intn(180)
	now := g.now()

	return models.Document{
		ID:          id,
		Title:       t.title,
		Body:        body,
		Category:    category,
		PublishedAt: now.AddDate(0, 0, -daysAgo).Format(models.DateLayout),
		CreatedAt:   now,
	}
}

func (g *Generator) Log(facility, metric string) models.OperationalLog {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.log(facility, metric)
}

func (g *Generator) Logs(count int) []models.OperationalLog {
	g.mu.Lock()
	defer g.mu.Unlock()

	logs := make([]models.OperationalLog, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, g.log("", ""))
	}
	return logs
}

func (g *Generator) log(facility, metric string) models.OperationalLog {
	if facility == "" {
		facility = Facilities[g.rng.Intn(len(Facilities))]
	}

	m := Metrics[g.rng.Intn(len(Metrics))]
	for _, candidate := range Metrics {
		if candidate.Name == metric {
			m = candidate
			break
		}
	}

	var value float64
	if g.rng.Float64() < ExceedanceProbability {
		value = g.uniform(m.Threshold*1.05, m.Threshold*1.3)
	} else {
		value = g.uniform(m.NormalMin, m.NormalMax)
	}
	value = math.Round(value*100) / 100

	hoursAgo := g.rng.Intn(73)

	l := models.OperationalLog{
		ID:        utils.NewLogID(),
		Facility:  facility,
		Metric:    m.Name,
		Value:     value,
		Unit:      m.Unit,
		Threshold: m.Threshold,
		Timestamp: g.now().Add(-time.Duration(hoursAgo) * time.Hour),
	}
	l.Status = l.DeriveStatus()
	return l
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
