package network

import (
	"fmt"

	"github.com/dietfit/meal-mapping-services/models/service"
	"github.com/go-redis/redis/v7"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(address, password string, db int) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *RedisClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

// MatchRunSave stores a completed match run under its run ID so the
// export worker and later inspection can load it without refetching.
func (c *RedisClient) MatchRunSave(run *service.MatchRun) error {
	jsonData, err := run.ToJson()
	if err != nil {
		return err
	}
	_, err = c.client.Set(runKey(run.RunID), jsonData, 0).Result()
	return err
}

// MatchRunGet returns the match run with the specified run ID.
func (c *RedisClient) MatchRunGet(runID string) (*service.MatchRun, error) {
	data, err := c.client.Get(runKey(runID)).Result()
	if err != nil {
		return nil, fmt.Errorf("MatchRunGet (%s): %s", runID, err.Error())
	}
	return service.MatchRunFromJson(data)
}

// MatchRunDelete removes the match run with the specified run ID.
func (c *RedisClient) MatchRunDelete(runID string) error {
	_, err := c.client.Del(runKey(runID)).Result()
	return err
}

func runKey(runID string) string {
	return fmt.Sprintf("match_run:%s", runID)
}
