package audit

import (
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

// DefaultChainFile matches the Conf default for ChainFile.
const DefaultChainFile = "logs/audit.log"

const (
	SinkLog   = "log"
	SinkChain = "chain"
	SinkKafka = "kafka"
	SinkRedis = "redis"
)

type (
	KafkaConf struct {
		Brokers []string `json:",optional"`
		Topic   string   `json:",default=smshook.audit"`
	}

	RedisConf struct {
		URL          string `json:",default=redis://localhost:6379/0"`
		Stream       string `json:",default=smshook:audit"`
		MaxLen       int64  `json:",default=1000000"`
		MaxLenApprox bool   `json:",default=true"`
	}

	// Conf selects the audit sinks. The log sink is always on.
	Conf struct {
		Sinks     []string `json:",optional"`
		ChainFile string   `json:",default=logs/audit.log"`
		Kafka     KafkaConf
		Redis     RedisConf
	}
)

func (c Conf) Validate() error {
	for _, name := range c.Sinks {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case SinkLog:
		case SinkChain:
			if c.ChainFile == "" {
				return fmt.Errorf("audit sink %q: ChainFile is required", name)
			}
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 {
				return fmt.Errorf("audit sink %q: Kafka.Brokers is required", name)
			}
		case SinkRedis:
			if _, err := redis.ParseURL(c.Redis.URL); err != nil {
				return fmt.Errorf("audit sink %q: %w", name, err)
			}
		default:
			return fmt.Errorf("unsupported audit sink %q", name)
		}
	}
	return nil
}

// New builds the sink set described by c. A sink that cannot be built is
// logged and skipped so auditing never blocks startup.
func New(c Conf) Sink {
	sinks := Multi{NewLogSink()}
	seen := map[string]bool{SinkLog: true}
	for _, name := range c.Sinks {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case SinkChain:
			s, err := NewChainSink(c.ChainFile)
			if err != nil {
				logx.Errorf("[audit] chain sink %s: %v; skipped", c.ChainFile, err)
				continue
			}
			sinks = append(sinks, s)
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 {
				logx.Errorf("[audit] kafka sink requested without brokers; skipped")
				continue
			}
			sinks = append(sinks, NewKafka(c.Kafka.Brokers, c.Kafka.Topic))
			logx.Infof("[audit] kafka sink enabled: brokers=%s topic=%s", strings.Join(c.Kafka.Brokers, ","), c.Kafka.Topic)
		case SinkRedis:
			s, err := NewRedis(c.Redis.URL, c.Redis.Stream, c.Redis.MaxLen, c.Redis.MaxLenApprox)
			if err != nil {
				logx.Errorf("[audit] %v; skipped", err)
				continue
			}
			sinks = append(sinks, s)
			logx.Infof("[audit] redis sink enabled: stream=%s", c.Redis.Stream)
		default:
			logx.Errorf("[audit] unsupported sink %q; skipped", name)
		}
	}
	return sinks
}
