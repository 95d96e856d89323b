package server

import (
	"math/rand"
)

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "迷路的", "威武的", "沉稳的", "活泼的",
		"机智的", "潇洒的", "好奇的", "霸气的", "淡定的",
		"闪亮的", "迷人的", "执着的", "呆萌的", "高冷的",
	}

	nouns = []string{
		"探险家", "旅行者", "航海家", "测绘员", "向导",
		"背包客", "飞行员", "游牧民", "观星者", "登山客",
		"环游者", "拾荒者", "漫游者", "考察员", "引路人",
		"寻宝人", "制图师", "巡游者", "候鸟", "罗盘手",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + noun
}
