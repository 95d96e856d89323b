package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/geodetect/geodetect/internal/geo"
)

const (
	// 逆地理编码接口
	defaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

	// 占位文本：对外绝不返回错误，失败时给出这些兜底值
	PlaceNameNoGuess  = "未提交猜测"
	PlaceNameNotFound = "未知地点"
	placeUnknownCity  = "未知区域"
	placeUnknownState = "未知国家"
)

// GoogleGeocoder 基于 Google Geocoding API 的逆地理编码服务
// 任何内部错误都降级为占位文本，绝不向调用方抛错
type GoogleGeocoder struct {
	apiKey     string
	geocodeURL string
	client     *http.Client
}

// NewGoogleGeocoder 创建逆地理编码服务
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:     apiKey,
		geocodeURL: defaultGeocodeURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// geocodeResponse 逆地理编码响应
type geocodeResponse struct {
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// PlaceName 把坐标转换为「城市, 国家」形式的地名
// coord 为 nil（玩家未猜测）时返回占位文本
func (g *GoogleGeocoder) PlaceName(ctx context.Context, coord *geo.Coordinate) string {
	if coord == nil {
		return PlaceNameNoGuess
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", coord.Lat, coord.Lng))
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return PlaceNameNotFound
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("逆地理编码请求失败: %v", err)
		return PlaceNameNotFound
	}
	defer func() { _ = resp.Body.Close() }()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("逆地理编码响应解析失败: %v", err)
		return PlaceNameNotFound
	}

	return parseAddress(&data)
}

// parseAddress 从首个结果中提取城市与国家
func parseAddress(data *geocodeResponse) string {
	if len(data.Results) == 0 {
		return PlaceNameNotFound
	}

	city, country := "", ""
	for _, component := range data.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "country":
				country = component.LongName
			case "locality", "administrative_area_level_1":
				if city == "" {
					city = component.LongName
				}
			}
		}
	}

	if city == "" {
		city = placeUnknownCity
	}
	if country == "" {
		country = placeUnknownState
	}
	return city + ", " + country
}
