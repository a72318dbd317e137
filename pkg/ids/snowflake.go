// 文件: pkg/ids/snowflake.go
// 模拟任务 RunID 生成器
// 使用开源库: github.com/bwmarrin/snowflake

package ids

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	initOnce sync.Once
	initErr  error
)

// Init 初始化雪花算法节点
// nodeID: 节点ID (0-1023)，多实例部署时每个实例必须不同
func Init(nodeID int64) error {
	initOnce.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// NextRunID 生成一次 VaR 模拟的唯一 ID
func NextRunID() int64 {
	// 未初始化则使用默认节点0
	if err := Init(0); err != nil || node == nil {
		panic("ids: snowflake node not available")
	}
	return node.Generate().Int64()
}
