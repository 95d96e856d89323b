package geo

import "math/rand"

// Region 游戏区域
type Region string

const (
	RegionWorld        Region = "world"
	RegionEurope       Region = "europe"
	RegionAsia         Region = "asia"
	RegionAfrica       Region = "africa"
	RegionNorthAmerica Region = "north_america"
	RegionSouthAmerica Region = "south_america"
	RegionOceania      Region = "oceania"
)

// Regions 所有合法区域
var Regions = []Region{
	RegionWorld,
	RegionEurope,
	RegionAsia,
	RegionAfrica,
	RegionNorthAmerica,
	RegionSouthAmerica,
	RegionOceania,
}

// Valid 判断区域是否合法
func (r Region) Valid() bool {
	for _, v := range Regions {
		if r == v {
			return true
		}
	}
	return false
}

// boundingBox 国家级边界框 [minLat, minLng] - [maxLat, maxLng]
type boundingBox struct {
	minLat, minLng float64
	maxLat, maxLng float64
}

// 各区域内街景覆盖较好的国家边界框，随机选点在框内均匀采样
var regionBounds = map[Region][]boundingBox{
	RegionEurope: {
		{36.0, -9.5, 43.8, 3.3},    // 西班牙/葡萄牙
		{42.3, -4.8, 51.1, 8.2},    // 法国
		{47.3, 5.9, 55.1, 15.0},    // 德国
		{36.6, 6.6, 47.1, 18.5},    // 意大利
		{49.0, -8.2, 58.7, 1.8},    // 英国/爱尔兰
		{49.0, 14.1, 54.8, 24.1},   // 波兰
		{55.3, 4.9, 71.2, 31.6},    // 斯堪的纳维亚
		{34.8, 19.3, 41.7, 28.2},   // 希腊
		{45.5, 16.1, 48.6, 22.9},   // 匈牙利
		{44.4, 22.4, 52.4, 40.2},   // 罗马尼亚/乌克兰
	},
	RegionAsia: {
		{30.9, 129.4, 45.6, 145.8}, // 日本
		{33.1, 125.9, 38.6, 129.6}, // 韩国
		{8.2, 97.3, 20.5, 105.6},   // 泰国
		{6.7, 68.1, 35.5, 97.4},    // 印度
		{-8.8, 95.0, 5.9, 141.0},   // 印度尼西亚
		{0.9, 100.1, 7.4, 119.3},   // 马来西亚
		{5.6, 117.2, 18.5, 126.6},  // 菲律宾
		{36.0, 26.0, 42.1, 44.8},   // 土耳其
		{29.4, 34.3, 33.3, 35.9},   // 以色列
		{22.1, 113.8, 25.3, 122.0}, // 台湾
	},
	RegionAfrica: {
		{-34.8, 16.5, -22.1, 32.9}, // 南非
		{27.7, -13.2, 35.9, -1.0},  // 摩洛哥
		{30.2, 7.5, 33.9, 11.6},    // 突尼斯
		{4.7, 2.7, 13.9, 14.7},     // 尼日利亚
		{-4.7, 33.9, 5.0, 41.9},    // 肯尼亚
		{4.7, -3.3, 11.2, 1.2},     // 加纳
		{-30.7, 27.0, -28.6, 29.5}, // 莱索托
		{-25.4, 31.0, -17.8, 35.9}, // 莫桑比克
	},
	RegionNorthAmerica: {
		{24.5, -124.8, 49.4, -66.9}, // 美国本土
		{42.0, -141.0, 60.0, -52.6}, // 加拿大南部
		{14.5, -117.1, 32.7, -86.7}, // 墨西哥
		{8.0, -85.9, 11.2, -82.6},   // 哥斯达黎加
		{17.9, -78.4, 18.5, -76.2},  // 牙买加
	},
	RegionSouthAmerica: {
		{-33.8, -73.6, -3.8, -34.8}, // 巴西
		{-55.1, -73.6, -21.8, -53.6}, // 阿根廷
		{-53.9, -75.7, -17.5, -66.4}, // 智利
		{-4.2, -79.0, 12.5, -66.9},  // 哥伦比亚/委内瑞拉
		{-18.3, -81.4, -0.0, -68.7}, // 秘鲁
		{-34.9, -58.4, -30.1, -53.1}, // 乌拉圭
	},
	RegionOceania: {
		{-43.6, 113.2, -10.7, 153.6}, // 澳大利亚
		{-46.6, 166.5, -34.4, 178.5}, // 新西兰
		{-18.3, 177.2, -16.1, 180.0}, // 斐济
	},
}

// worldBounds 世界区域为所有区域边界框的并集
var worldBounds = func() []boundingBox {
	var all []boundingBox
	for _, boxes := range regionBounds {
		all = append(all, boxes...)
	}
	return all
}()

// RandomCoordinate 在指定区域内随机生成一个坐标
// 先随机选一个国家边界框，再在框内均匀采样
func RandomCoordinate(region Region) Coordinate {
	boxes := worldBounds
	if region != RegionWorld {
		if b, ok := regionBounds[region]; ok {
			boxes = b
		}
	}

	box := boxes[rand.Intn(len(boxes))]
	return Coordinate{
		Lat: box.minLat + rand.Float64()*(box.maxLat-box.minLat),
		Lng: box.minLng + rand.Float64()*(box.maxLng-box.minLng),
	}
}
