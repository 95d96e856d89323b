package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/geodetect/geodetect/internal/geo"
)

const (
	// Street View 元数据接口
	defaultMetadataURL = "https://maps.googleapis.com/maps/api/streetview/metadata"

	// 随机坐标周边的全景搜索半径（米）
	searchRadiusMeters = 50000

	// 找到可用全景前的最大尝试次数
	maxLocateAttempts = 100
)

// ErrNoLocation 在最大尝试次数内未找到可用全景
var ErrNoLocation = errors.New("location: no usable street view panorama found")

// StreetViewLocator 基于 Google Street View 元数据接口的随机选点服务
// 在区域内随机采样坐标，逐个探测周边是否存在室外全景
type StreetViewLocator struct {
	apiKey      string
	metadataURL string
	client      *http.Client
}

// NewStreetViewLocator 创建选点服务
func NewStreetViewLocator(apiKey string) *StreetViewLocator {
	return &StreetViewLocator{
		apiKey:      apiKey,
		metadataURL: defaultMetadataURL,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// metadataResponse Street View 元数据响应
type metadataResponse struct {
	Status   string `json:"status"`
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

// RandomLocation 在指定区域内随机找一个有街景覆盖的坐标
// 多次探测仍找不到时返回 ErrNoLocation，调用方视为本次开局失败
func (l *StreetViewLocator) RandomLocation(ctx context.Context, region geo.Region) (geo.Coordinate, error) {
	for attempt := 0; attempt < maxLocateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return geo.Coordinate{}, err
		}

		candidate := geo.RandomCoordinate(region)

		found, coord, err := l.probe(ctx, candidate)
		if err != nil {
			// 单次探测失败不致命，继续尝试下一个候选点
			continue
		}
		if found {
			return coord, nil
		}
	}
	return geo.Coordinate{}, ErrNoLocation
}

// probe 探测候选坐标周边是否存在全景
func (l *StreetViewLocator) probe(ctx context.Context, candidate geo.Coordinate) (bool, geo.Coordinate, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", candidate.Lat, candidate.Lng))
	params.Set("radius", fmt.Sprintf("%d", searchRadiusMeters))
	params.Set("source", "outdoor")
	params.Set("key", l.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.metadataURL+"?"+params.Encode(), nil)
	if err != nil {
		return false, geo.Coordinate{}, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return false, geo.Coordinate{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return false, geo.Coordinate{}, err
	}

	if meta.Status == "OK" && meta.Location != nil {
		return true, geo.Coordinate{Lat: meta.Location.Lat, Lng: meta.Location.Lng}, nil
	}
	return false, geo.Coordinate{}, nil
}
