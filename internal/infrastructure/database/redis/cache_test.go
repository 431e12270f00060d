package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ChemLog-QC/pkg/errors"
)

type cachedCounts struct {
	Module string         `json:"module"`
	Counts map[string]int `json:"counts"`
}

type ParseCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *ParseCache
}

func (s *ParseCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	log := logging.NewNopLogger()
	client := &Client{rdb: db, config: &RedisConfig{}, logger: log}
	s.cache = NewParseCache(client, log, WithPrefix("test:"), WithTTL(0))
}

func (s *ParseCacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ParseCacheTestSuite) TestGet_Hit() {
	val := cachedCounts{Module: "tessellate", Counts: map[string]int{"3E": 2}}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:parse:tessellate:v1:abc").SetVal(string(data))

	var dest cachedCounts
	hit, err := s.cache.Get(context.Background(), "parse:tessellate:v1:abc", &dest)
	s.Require().NoError(err)
	s.True(hit)
	s.Equal(val, dest)
}

func (s *ParseCacheTestSuite) TestGet_MissIsNotAnError() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest cachedCounts
	hit, err := s.cache.Get(context.Background(), "k", &dest)
	s.NoError(err)
	s.False(hit)
}

func (s *ParseCacheTestSuite) TestGet_UndecodableIsMiss() {
	s.mock.ExpectGet("test:k").SetVal("{not json")

	var dest cachedCounts
	hit, err := s.cache.Get(context.Background(), "k", &dest)
	s.NoError(err)
	s.False(hit)
}

func (s *ParseCacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k").SetErr(stderrors.New("connection reset"))

	var dest cachedCounts
	hit, err := s.cache.Get(context.Background(), "k", &dest)
	s.False(hit)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *ParseCacheTestSuite) TestSet_NoTTL() {
	val := cachedCounts{Module: "qm"}
	data, _ := json.Marshal(val)
	s.mock.ExpectSet("test:k", data, 0).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k", val))
}

func (s *ParseCacheTestSuite) TestSet_Unserializable() {
	err := s.cache.Set(context.Background(), "k", make(chan int))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func TestParseCacheSuite(t *testing.T) {
	suite.Run(t, new(ParseCacheTestSuite))
}

func TestParseCache_RoundTripAndPurge(t *testing.T) {
	client, mr := newMiniClient(t)
	cache := NewParseCache(client, logging.NewNopLogger(), WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "parse:qm:v1:aaa", cachedCounts{Module: "qm"}))
	require.NoError(t, cache.Set(ctx, "parse:qm:v1:bbb", cachedCounts{Module: "qm"}))
	require.NoError(t, cache.Set(ctx, "parse:tessellate:v1:ccc", cachedCounts{Module: "tessellate"}))

	ttl := mr.TTL("chemlogqc:parse:qm:v1:aaa")
	assert.True(t, ttl >= 54*time.Minute && ttl <= 66*time.Minute, ttl)

	var got cachedCounts
	hit, err := cache.Get(ctx, "parse:qm:v1:aaa", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "qm", got.Module)

	n, err := cache.Purge(ctx, "parse:qm:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists("chemlogqc:parse:qm:v1:bbb"))
	assert.True(t, mr.Exists("chemlogqc:parse:tessellate:v1:ccc"))
}

//Personal.AI order the ending
