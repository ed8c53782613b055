package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// Generator 递增 ID 生成器
// 使用 Sonyflake 算法生成全局唯一且递增的 ID
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// initDefaultGenerator 初始化默认生成器
func initDefaultGenerator() {
	defaultGenerator = New()
}

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(initDefaultGenerator)
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	// 使用默认设置创建 Sonyflake
	// 如果需要自定义机器 ID，可以通过 Settings 配置
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // 起始时间
	})
	if sf == nil {
		// 如果创建失败，使用当前时间作为起始时间
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Now(),
		})
	}

	return &Generator{
		sf: sf,
	}
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateSessionID 生成加载会话 ID（格式：sess-{递增 ID}）
func (g *Generator) GenerateSessionID() (string, error) {
	return g.generateIDWithPrefix("sess", "generate session ID")
}

// GenerateImageID 生成 BIOS 镜像 ID（格式：img-{递增 ID}）
func (g *Generator) GenerateImageID() (string, error) {
	return g.generateIDWithPrefix("img", "generate image ID")
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// 包级别的便捷函数，使用默认生成器

// GenerateSessionID 使用默认生成器生成加载会话 ID
func GenerateSessionID() (string, error) {
	return DefaultGenerator().GenerateSessionID()
}

// GenerateImageID 使用默认生成器生成 BIOS 镜像 ID
func GenerateImageID() (string, error) {
	return DefaultGenerator().GenerateImageID()
}

// GenerateID 使用默认生成器生成通用递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
