package geo

import "math"

const (
	// 地球平均半径（公里）
	earthRadiusKM = 6371

	// 超过该距离得 0 分
	maxScoreDistanceKM = 20000

	// 满分
	maxScore = 5000

	// 得分衰减常数（公里）
	scoreDecayKM = 1500
)

// Coordinate 经纬度坐标
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance 计算两点间大圆距离（haversine，单位公里）
func Distance(a, b Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// Score 根据距离计算得分，距离越近得分越高
// 0 公里得 5000 分，按 e^(-d/1500) 衰减，超过 20000 公里得 0 分
func Score(distanceKM float64) int {
	if distanceKM > maxScoreDistanceKM {
		return 0
	}
	return int(math.Round(maxScore * math.Exp(-distanceKM/scoreDecayKM)))
}
