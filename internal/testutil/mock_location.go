//go:build !production

package testutil

import (
	"context"

	"github.com/geodetect/geodetect/internal/geo"
)

// FixedLocator 返回固定坐标序列的选点桩实现
// Err 非 nil 时所有请求直接失败
type FixedLocator struct {
	Coords []geo.Coordinate
	Err    error

	next chan geo.Coordinate
}

// NewFixedLocator 创建选点桩，坐标按顺序分发给并发请求
func NewFixedLocator(coords ...geo.Coordinate) *FixedLocator {
	next := make(chan geo.Coordinate, len(coords))
	for _, c := range coords {
		next <- c
	}
	return &FixedLocator{Coords: coords, next: next}
}

func (l *FixedLocator) RandomLocation(ctx context.Context, _ geo.Region) (geo.Coordinate, error) {
	if l.Err != nil {
		return geo.Coordinate{}, l.Err
	}
	select {
	case c := <-l.next:
		return c, nil
	case <-ctx.Done():
		return geo.Coordinate{}, ctx.Err()
	}
}

// StaticGeocoder 返回固定地名的逆地理编码桩实现
type StaticGeocoder struct {
	Name string
}

func (g *StaticGeocoder) PlaceName(_ context.Context, coord *geo.Coordinate) string {
	if coord == nil {
		return "未提交猜测"
	}
	if g.Name != "" {
		return g.Name
	}
	return "测试地点"
}
