package forms

import (
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/timezone"
	"github.com/dharmasatrya/flightbooking/internal/validation"
)

const (
	FieldDirect          = "direct"
	FieldCurrency        = "currency"
	FieldSearchCount     = "searchs"
	FieldBusinessClass   = "class"
	FieldTotalPassengers = "qtyPassengers"
	FieldAdults          = "adult"
	FieldChildren        = "child"
	FieldInfants         = "baby"
	FieldSeats           = "seat"

	SegmentDepartureCity = "departureCity"
	SegmentArrivalCity   = "arrivalCity"
	SegmentDepartureTime = "hour"
)

var segmentPathPattern = regexp.MustCompile(`^itinerary\[(\d+)\]\.(\w+)$`)

// SearchForm holds the search draft between edits. It is not safe for
// concurrent use; the owning session serializes access.
type SearchForm struct {
	draft      models.SearchCriteria
	touched    map[string]bool
	typeErrors models.FieldErrors
	loc        *time.Location

	// OnSubmitSuccess, when set, receives the normalized criteria of every
	// successful Submit.
	OnSubmitSuccess func(models.SearchCriteria)
}

// NewSearchForm starts from the default draft. Date/time values without an
// offset are read in loc.
func NewSearchForm(loc *time.Location) *SearchForm {
	if loc == nil {
		loc = time.UTC
	}
	return &SearchForm{
		draft:      models.DefaultSearchCriteria(),
		touched:    make(map[string]bool),
		typeErrors: models.FieldErrors{},
		loc:        loc,
	}
}

// Clone returns an independent copy of the form, including touched paths
// and pending type errors.
func (f *SearchForm) Clone() *SearchForm {
	c := *f
	c.draft = f.draft.Clone()
	c.touched = maps.Clone(f.touched)
	c.typeErrors = maps.Clone(f.typeErrors)
	return &c
}

// SetField updates one draft field. Dependent passenger counts are never
// adjusted when qtyPassengers changes; they are only validated against it.
func (f *SearchForm) SetField(path string, value any) error {
	path = strings.TrimSpace(path)

	if m := segmentPathPattern.FindStringSubmatch(path); m != nil {
		idx, _ := strconv.Atoi(m[1])
		return f.setSegmentField(idx, m[2], path, value)
	}

	switch path {
	case FieldDirect:
		return f.setBool(path, value, &f.draft.Direct)
	case FieldBusinessClass:
		return f.setBool(path, value, &f.draft.BusinessClass)
	case FieldCurrency:
		return f.setString(path, value, toCode, &f.draft.Currency)
	case FieldSearchCount:
		return f.setInt(path, value, &f.draft.SearchCount)
	case FieldTotalPassengers:
		return f.setInt(path, value, &f.draft.TotalPassengers)
	case FieldAdults:
		return f.setInt(path, value, &f.draft.Adults)
	case FieldChildren:
		return f.setInt(path, value, &f.draft.Children)
	case FieldInfants:
		return f.setInt(path, value, &f.draft.Infants)
	case FieldSeats:
		return f.setInt(path, value, &f.draft.Seats)
	}

	return fmt.Errorf("%w: %s", models.ErrUnknownField, path)
}

func (f *SearchForm) setSegmentField(idx int, field, path string, value any) error {
	switch field {
	case SegmentDepartureCity, SegmentArrivalCity, SegmentDepartureTime:
	default:
		return fmt.Errorf("%w: %s", models.ErrUnknownField, path)
	}

	// Writing one past the end appends a leg.
	if idx > len(f.draft.Itinerary) {
		return fmt.Errorf("%w: %s", models.ErrIndexOutOfRange, path)
	}
	if idx == len(f.draft.Itinerary) {
		f.draft.Itinerary = append(f.draft.Itinerary, models.ItinerarySegment{})
	}

	seg := &f.draft.Itinerary[idx]
	switch field {
	case SegmentDepartureCity:
		return f.setString(path, value, toCode, &seg.DepartureCity)
	case SegmentArrivalCity:
		return f.setString(path, value, toCode, &seg.ArrivalCity)
	default:
		return f.setString(path, value, toText, &seg.DepartureDateTime)
	}
}

// RemoveSegment drops leg idx. The last remaining leg cannot be removed.
func (f *SearchForm) RemoveSegment(idx int) error {
	if idx < 0 || idx >= len(f.draft.Itinerary) {
		return fmt.Errorf("%w: itinerary[%d]", models.ErrIndexOutOfRange, idx)
	}
	if len(f.draft.Itinerary) == 1 {
		return models.ErrLastSegment
	}
	f.draft.Itinerary = append(f.draft.Itinerary[:idx], f.draft.Itinerary[idx+1:]...)

	// Paths of later legs shift; drop their interaction state.
	for path := range f.touched {
		if segmentIndexAtLeast(path, idx) {
			delete(f.touched, path)
		}
	}
	for path := range f.typeErrors {
		if segmentIndexAtLeast(path, idx) {
			delete(f.typeErrors, path)
		}
	}
	return nil
}

func segmentIndexAtLeast(path string, idx int) bool {
	m := segmentPathPattern.FindStringSubmatch(path)
	if m == nil {
		return false
	}
	n, _ := strconv.Atoi(m[1])
	return n >= idx
}

// SortPaths orders edit paths so top-level fields come first and itinerary
// legs follow by numeric index.
func SortPaths(paths []string) {
	index := func(path string) int {
		m := segmentPathPattern.FindStringSubmatch(strings.TrimSpace(path))
		if m == nil {
			return -1
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := index(paths[i]), index(paths[j])
		if a != b {
			return a < b
		}
		return paths[i] < paths[j]
	})
}

func (f *SearchForm) setBool(path string, value any, target *bool) error {
	f.touched[path] = true
	b, err := toBool(value)
	if err != nil {
		f.typeErrors[path] = fmt.Sprintf("%s must be true or false", path)
		return nil
	}
	delete(f.typeErrors, path)
	*target = b
	return nil
}

func (f *SearchForm) setInt(path string, value any, target *int) error {
	f.touched[path] = true
	n, _, err := toInt(value)
	if err != nil {
		f.typeErrors[path] = validation.TypeMismatch(path)
		return nil
	}
	delete(f.typeErrors, path)
	*target = n
	return nil
}

func (f *SearchForm) setString(path string, value any, conv func(any) (string, error), target *string) error {
	f.touched[path] = true
	s, err := conv(value)
	if err != nil {
		f.typeErrors[path] = fmt.Sprintf("%s must be text", path)
		return nil
	}
	delete(f.typeErrors, path)
	*target = s
	return nil
}

// Draft returns a copy of the current values.
func (f *SearchForm) Draft() models.SearchCriteria {
	return f.draft.Clone()
}

// Touched lists the paths the user has interacted with.
func (f *SearchForm) Touched() []string {
	out := make([]string, 0, len(f.touched))
	for path := range f.touched {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Errors validates the draft. Type mismatches from edits replace rule messages
// for the same path.
func (f *SearchForm) Errors() models.FieldErrors {
	fe := validation.ValidateSearchCriteria(f.draft)
	for path, msg := range f.typeErrors {
		fe[path] = msg
	}
	return fe
}

// VisibleErrors is Errors restricted to touched paths.
func (f *SearchForm) VisibleErrors() models.FieldErrors {
	visible := models.FieldErrors{}
	for path, msg := range f.Errors() {
		if f.touched[path] {
			visible[path] = msg
		}
	}
	return visible
}

// Submit validates the draft. On success every itinerary hour is rewritten as
// an ISO-8601 UTC instant and the ready-to-send criteria are returned.
func (f *SearchForm) Submit() (models.SearchCriteria, models.FieldErrors) {
	f.touchAll()

	fe := f.Errors()
	if len(fe) > 0 {
		return models.SearchCriteria{}, fe
	}

	out := f.draft.Clone()
	for i := range out.Itinerary {
		iso, err := timezone.Normalize(out.Itinerary[i].DepartureDateTime, f.loc)
		if err != nil {
			return models.SearchCriteria{}, models.FieldErrors{
				models.SegmentPath(i, SegmentDepartureTime): "Departure date and time must be a valid date",
			}
		}
		out.Itinerary[i].DepartureDateTime = iso
	}

	if f.OnSubmitSuccess != nil {
		f.OnSubmitSuccess(out.Clone())
	}
	return out, nil
}

func (f *SearchForm) touchAll() {
	for _, path := range []string{
		FieldDirect, FieldCurrency, FieldSearchCount, FieldBusinessClass, FieldTotalPassengers,
		FieldAdults, FieldChildren, FieldInfants, FieldSeats,
	} {
		f.touched[path] = true
	}
	for i := range f.draft.Itinerary {
		for _, field := range []string{SegmentDepartureCity, SegmentArrivalCity, SegmentDepartureTime} {
			f.touched[models.SegmentPath(i, field)] = true
		}
	}
}
