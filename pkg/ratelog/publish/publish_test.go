package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/metricflow/internal/testutil"
	"github.com/vnykmshr/metricflow/pkg/ratelog"
)

func TestNewRedisValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	_, err := NewRedis(nil, "rates", nil)
	testutil.AssertError(t, err)

	_, err = NewRedis(client, "", nil)
	testutil.AssertError(t, err)

	_, err = NewRedis(client, "rates", nil)
	testutil.AssertNoError(t, err)
}

func TestSampleJSON(t *testing.T) {
	s := ratelog.Sample{
		Label:  "ingest",
		Tag:    "ingest",
		Action: "processed",
		Unit:   "records",
		Count:  10,
		Rate:   5,
		At:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	payload, err := json.Marshal(s)
	testutil.AssertNoError(t, err)

	var decoded ratelog.Sample
	testutil.AssertNoError(t, json.Unmarshal(payload, &decoded))
	testutil.AssertEqual(t, decoded.Tag, "ingest")
	testutil.AssertEqual(t, decoded.Count, int64(10))
	testutil.AssertEqual(t, decoded.Rate, 5.0)
}

// TestPublishRoundTrip needs a local Redis server; it is skipped otherwise.
func TestPublishRoundTrip(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	sub := client.Subscribe(ctx, "metricflow_test_rates")
	defer sub.Close()

	// Wait for the subscription before publishing
	_, err := sub.Receive(ctx)
	testutil.AssertNoError(t, err)

	pub, err := NewRedis(client, "metricflow_test_rates", nil)
	testutil.AssertNoError(t, err)

	sample := ratelog.Sample{Tag: "test", Action: "published", Unit: "samples", Count: 3, Rate: 1.5, At: time.Now()}
	testutil.AssertNoError(t, pub.Publish(ctx, sample))

	msg, err := sub.ReceiveMessage(ctx)
	testutil.AssertNoError(t, err)

	var decoded ratelog.Sample
	testutil.AssertNoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
	testutil.AssertEqual(t, decoded.Tag, "test")
	testutil.AssertEqual(t, decoded.Count, int64(3))
}
