package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dharmasatrya/travelsearch/internal/models"
)

type bookingSearchResponse struct {
	Result []bookingHotel `json:"result"`
}

type bookingHotel struct {
	HotelID           int64    `json:"hotel_id"`
	HotelName         string   `json:"hotel_name"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	CountryCode       string   `json:"country_trans"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	DistanceToCenter  string   `json:"distance_to_cc"`
	Class             float64  `json:"class"`
	ReviewScore       float64  `json:"review_score"`
	ReviewCount       int      `json:"review_nr"`
	MinTotalPrice     float64  `json:"min_total_price"`
	Currency          string   `json:"currencycode"`
	RoomName          string   `json:"unit_configuration_label"`
	Facilities        string   `json:"hotel_facilities"`
	Photos            []string `json:"main_photo_urls"`
	MainPhotoURL      string   `json:"main_photo_url"`
	URL               string   `json:"url"`
	IsFreeCancellable int      `json:"is_free_cancellable"`
	HotelIncludeBfast int      `json:"hotel_include_breakfast"`
}

// BookingProvider queries the Booking.com demand API. Upstream reports
// a total stay price; the per-night figure is derived by dividing over
// the stay length.
type BookingProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type BookingConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewBookingProvider(cfg BookingConfig) *BookingProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://distribution-xml.booking.com"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = defaultHTTPClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &BookingProvider{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

func (p *BookingProvider) Name() string {
	return "booking"
}

func (p *BookingProvider) Enabled() bool {
	return p.apiKey != ""
}

func (p *BookingProvider) Search(ctx context.Context, req models.HotelSearchRequest) ([]models.Hotel, error) {
	params := url.Values{
		"checkin_date":  {req.CheckIn},
		"checkout_date": {req.CheckOut},
		"adults_number": {strconv.Itoa(req.Adults)},
		"room_number":   {strconv.Itoa(req.Rooms)},
		"units":         {"metric"},
		"order_by":      {"price"},
	}
	if req.Children > 0 {
		params.Set("children_number", strconv.Itoa(req.Children))
	}
	// Prefer coordinate search when the client supplied a point.
	if req.Latitude != nil && req.Longitude != nil {
		params.Set("latitude", strconv.FormatFloat(*req.Latitude, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(*req.Longitude, 'f', -1, 64))
	} else {
		params.Set("dest_type", "city")
		params.Set("dest_name", req.Destination)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/2.9/json/hotels?"+params.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	httpReq.Header.Set("X-Booking-API-Key", p.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.Name(), fmt.Errorf("unexpected status %d", httpResp.StatusCode))
	}

	var resp bookingSearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, NewProviderError(p.Name(), err)
	}

	nights := req.Nights()
	hotels := make([]models.Hotel, 0, len(resp.Result))
	for _, h := range resp.Result {
		hotel, err := p.normalize(h, nights)
		if err != nil {
			p.logger.Warn("skipping unparsable booking hotel", "hotel_id", h.HotelID, "error", err)
			continue
		}
		hotels = append(hotels, hotel)
	}

	return hotels, nil
}

func (p *BookingProvider) normalize(h bookingHotel, nights int) (models.Hotel, error) {
	if h.HotelName == "" {
		return models.Hotel{}, fmt.Errorf("hotel has no name")
	}
	if h.MinTotalPrice <= 0 {
		return models.Hotel{}, fmt.Errorf("hotel has no price")
	}
	if nights < 1 {
		nights = 1
	}

	totalPrice := h.MinTotalPrice
	pricePerNight := totalPrice / float64(nights)

	currency := strings.ToUpper(h.Currency)
	if currency == "" {
		currency = "USD"
	}

	location := models.HotelLocation{
		Address: h.Address,
		City:    h.City,
		Country: h.CountryCode,
	}
	if h.Latitude != 0 || h.Longitude != 0 {
		lat, lon := h.Latitude, h.Longitude
		location.Latitude = &lat
		location.Longitude = &lon
	}
	if dist, err := strconv.ParseFloat(h.DistanceToCenter, 64); err == nil {
		location.DistanceToCenterKM = &dist
	}

	var rating *float64
	if h.Class > 0 {
		class := h.Class
		rating = &class
	}
	var reviewScore *float64
	if h.ReviewScore > 0 {
		score := h.ReviewScore
		reviewScore = &score
	}
	var reviewCount *int
	if h.ReviewCount > 0 {
		count := h.ReviewCount
		reviewCount = &count
	}

	roomName := h.RoomName
	if roomName == "" {
		roomName = "Standard Room"
	}

	cancellation := "Non-refundable"
	if h.IsFreeCancellable == 1 {
		cancellation = "Free cancellation"
	}

	return models.Hotel{
		ID:                 fmt.Sprintf("booking_%d", h.HotelID),
		Name:               h.HotelName,
		Location:           location,
		Rating:             rating,
		ReviewScore:        reviewScore,
		ReviewCount:        reviewCount,
		PricePerNight:      pricePerNight,
		TotalPrice:         totalPrice,
		Currency:           currency,
		RoomType: models.RoomType{
			Name:         roomName,
			MaxOccupancy: 2,
		},
		Amenities:          p.parseAmenities(h.Facilities),
		Images:             p.collectImages(h),
		DeepLink:           h.URL,
		Provider:           p.Name(),
		CancellationPolicy: cancellation,
		BreakfastIncluded:  h.HotelIncludeBfast == 1,
		LastUpdated:        time.Now().UTC(),
	}, nil
}

func (p *BookingProvider) parseAmenities(facilities string) []models.HotelAmenity {
	if facilities == "" {
		return nil
	}
	var amenities []models.HotelAmenity
	for _, name := range strings.Split(facilities, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		amenities = append(amenities, models.HotelAmenity{Name: name})
	}
	return amenities
}

// collectImages keeps at most the first five photos to bound payloads.
func (p *BookingProvider) collectImages(h bookingHotel) []models.HotelImage {
	urls := h.Photos
	if len(urls) == 0 && h.MainPhotoURL != "" {
		urls = []string{h.MainPhotoURL}
	}
	if len(urls) > 5 {
		urls = urls[:5]
	}
	images := make([]models.HotelImage, 0, len(urls))
	for _, u := range urls {
		images = append(images, models.HotelImage{URL: u})
	}
	return images
}
