package results

import (
	"fmt"
	"strings"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

const (
	DefaultPageSize = 10
	NoResultsText   = "No flights were found with the applied filters."
	logoURLFormat   = "https://pics.avs.io/60/60/%s.png"
	defaultLogoURL  = "https://pics.avs.io/60/60/default.png"
)

// PageSizeOptions are the page sizes offered by the results table.
var PageSizeOptions = []int{5, 10, 25}

// Paginate returns the window [page*pageSize, page*pageSize+pageSize) clipped to the list.
func Paginate(list []models.FlightOffer, page, pageSize int) []models.FlightOffer {
	if page < 0 || pageSize <= 0 {
		return []models.FlightOffer{}
	}
	start := page * pageSize
	if start >= len(list) {
		return []models.FlightOffer{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// View is the table state kept between requests: filters, sort and the page cursor.
type View struct {
	filter    models.FilterSpec
	sortBy    string
	sortOrder string
	page      int
	pageSize  int
}

func NewView() *View {
	return &View{pageSize: DefaultPageSize}
}

func (v *View) Filter() models.FilterSpec { return v.filter }
func (v *View) Page() int                 { return v.page }
func (v *View) PageSize() int             { return v.pageSize }

// SetFilter replaces the filters and returns to the first page.
func (v *View) SetFilter(f models.FilterSpec) {
	f.Airline = strings.TrimSpace(f.Airline)
	f.Date = strings.TrimSpace(f.Date)
	if f != v.filter {
		v.page = 0
	}
	v.filter = f
}

func (v *View) SetSort(sortBy, sortOrder string) {
	v.sortBy = sortBy
	v.sortOrder = sortOrder
}

func (v *View) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	v.page = page
}

// SetPageSize always resets the cursor to the first page.
func (v *View) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.pageSize = size
	v.page = 0
}

// Reset drops filters, sort and cursor.
func (v *View) Reset() {
	*v = View{pageSize: DefaultPageSize}
}

type Row struct {
	ID             models.OfferID `json:"id"`
	Airline        string         `json:"airline"`
	LogoURL        string         `json:"logo_url"`
	FallbackLogo   string         `json:"fallback_logo_url"`
	FlightNumber   string         `json:"flight_number"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	DepartureTime  string         `json:"departure_time"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency"`
	FormattedPrice string         `json:"formatted_price"`
}

type Page struct {
	Rows            []Row             `json:"rows"`
	Filter          models.FilterSpec `json:"filter"`
	Page            int               `json:"page"`
	PageSize        int               `json:"page_size"`
	PageSizeOptions []int             `json:"page_size_options"`
	Total           int               `json:"total"`
	Pages           int               `json:"pages"`
	NoResults       string            `json:"no_results,omitempty"`
}

// Render filters, sorts and paginates offers. The input slice is not modified.
func (v *View) Render(offers []models.FlightOffer) Page {
	filtered := Apply(offers, v.filter)
	Sort(filtered, v.sortBy, v.sortOrder)

	window := Paginate(filtered, v.page, v.pageSize)
	rows := make([]Row, 0, len(window))
	for _, o := range window {
		rows = append(rows, toRow(o))
	}

	p := Page{
		Rows:            rows,
		Filter:          v.filter,
		Page:            v.page,
		PageSize:        v.pageSize,
		PageSizeOptions: PageSizeOptions,
		Total:           len(filtered),
		Pages:           (len(filtered) + v.pageSize - 1) / v.pageSize,
	}
	if len(filtered) == 0 {
		p.NoResults = NoResultsText
	}
	return p
}

func toRow(o models.FlightOffer) Row {
	seg := o.FirstSegment()
	return Row{
		ID:             o.ID,
		Airline:        o.MarketingCarrier,
		LogoURL:        fmt.Sprintf(logoURLFormat, o.MarketingCarrier),
		FallbackLogo:   defaultLogoURL,
		FlightNumber:   o.FlightNumber,
		Origin:         seg.DepartureCity,
		Destination:    seg.ArrivalCity,
		DepartureTime:  seg.DepartureTime,
		Price:          o.Price,
		Currency:       o.Currency,
		FormattedPrice: currency.Format(o.Price, o.Currency),
	}
}
