package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	Post    PostEventsConfig `mapstructure:"post"`
}

// PostEventsConfig 针对 post 资源的事件开关。
type PostEventsConfig struct {
	Created bool `mapstructure:"created"`
	Updated bool `mapstructure:"updated"`
	Deleted bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.post.created", true)
	v.SetDefault("events.post.updated", true)
	v.SetDefault("events.post.deleted", true)
}
