package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePremium  Role = "premium"
	RoleStandard Role = "standard"
	RoleFree     Role = "free"
)

// Provider is a social login provider
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderLinkedIn Provider = "linkedin"
)

// MaxTargetCountries caps OnboardingData.TargetCountries
const MaxTargetCountries = 5

// OnboardingData is captured once by the onboarding wizard
type OnboardingData struct {
	Role            string   `json:"role"`
	Industry        string   `json:"industry"`
	BusinessLine    string   `json:"businessLine"`
	TargetCountries []string `json:"targetCountries"`
	PrimaryGoal     string   `json:"primaryGoal"`
}

// User represents a signed-in identity
type User struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Role           Role            `json:"role"`
	Company        string          `json:"company,omitempty"`
	AvatarURL      string          `json:"avatarUrl,omitempty"`
	Permissions    []string        `json:"permissions,omitempty"`
	OnboardingData *OnboardingData `json:"onboardingData,omitempty"`
}

// ProfileUpdate is a partial User. Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string         `json:"name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	Role           *Role           `json:"role,omitempty"`
	Company        *string         `json:"company,omitempty"`
	AvatarURL      *string         `json:"avatarUrl,omitempty"`
	Permissions    []string        `json:"permissions,omitempty"`
	OnboardingData *OnboardingData `json:"onboardingData,omitempty"`
}

// AuthToken is the persisted session token. Exp is epoch milliseconds.
type AuthToken struct {
	UserID string `json:"userId"`
	Exp    int64  `json:"exp"`
}

// Shipment is a single customs record
type Shipment struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"`
	ProductDesc   string  `json:"productDesc"`
	HsCode        string  `json:"hsCode"`
	Importer      string  `json:"importer"`
	Exporter      string  `json:"exporter"`
	OriginCountry string  `json:"originCountry"`
	DestCountry   string  `json:"destCountry"`
	Quantity      int     `json:"quantity"`
	Unit          string  `json:"unit"`
	ValueUSD      float64 `json:"valueUSD"`
	Port          string  `json:"port"`
}

// Tier ranks a company by trade size
type Tier string

const (
	Tier1 Tier = "Tier 1"
	Tier2 Tier = "Tier 2"
	Tier3 Tier = "Tier 3"
)

// Company is a trading partner profile
type Company struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Industry      string   `json:"industry"`
	Tier          Tier     `json:"tier"`
	IsVerified    bool     `json:"isVerified"`
	TradeVolume   string   `json:"tradeVolume"`
	EmployeeCount string   `json:"employeeCount"`
	FoundedYear   int      `json:"foundedYear"`
	Website       string   `json:"website"`
	Description   string   `json:"description"`
	TopProducts   []string `json:"topProducts"`
	RiskScore     int      `json:"riskScore"`
	ContactPerson string   `json:"contactPerson,omitempty"`
	ContactEmail  string   `json:"contactEmail,omitempty"`
	ContactPhone  string   `json:"contactPhone,omitempty"`
}

// RiskLevel of a country
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// CountryStats summarises a country's trade position
type CountryStats struct {
	Country      string    `json:"country"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	GDP          string    `json:"gdp"`
	TradeBalance string    `json:"tradeBalance"`
	TopExport    string    `json:"topExport"`
}

// HsCode is a flat duty-rate record
type HsCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	DutyRate    string `json:"dutyRate"`
}

// HsLevel is the depth of an HsNode in the classification tree
type HsLevel string

const (
	HsChapter    HsLevel = "Chapter"
	HsHeading    HsLevel = "Heading"
	HsSubheading HsLevel = "Subheading"
)

// DutyRate is the import duty for one destination
type DutyRate struct {
	Country string `json:"country"`
	Rate    string `json:"rate"`
	Note    string `json:"note,omitempty"`
}

// HsNode is a node of the Chapter > Heading > Subheading tree
type HsNode struct {
	Code            string     `json:"code"`
	Label           string     `json:"label"`
	Level           HsLevel    `json:"level"`
	Children        []HsNode   `json:"children,omitempty"`
	DutyRates       []DutyRate `json:"dutyRates,omitempty"`
	RelatedProducts []string   `json:"relatedProducts,omitempty"`
}

// Clone returns a deep copy of the node
func (n HsNode) Clone() HsNode {
	out := n
	if n.Children != nil {
		out.Children = make([]HsNode, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	if n.DutyRates != nil {
		out.DutyRates = append([]DutyRate(nil), n.DutyRates...)
	}
	if n.RelatedProducts != nil {
		out.RelatedProducts = append([]string(nil), n.RelatedProducts...)
	}
	return out
}

// ChatTurn is one message of an AI conversation
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}
