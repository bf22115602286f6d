package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"rbc-shenglin/rock-share/global/model/rbc"
)

// ResponseTimeout 响应超时时间
const ResponseTimeout = 600 * time.Second

// DialTimeout 拨号超时时间
const DialTimeout = time.Second * 5

// EtcdStore 训练产物落到etcd, key布局:
// <prefix>/model/<modelId>
// <prefix>/hierarchy/<taskId>
type EtcdStore struct {
	client *clientv3.Client
	prefix string
}

func NewEtcdStore(endpoints []string, prefix string) (*EtcdStore, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: DialTimeout,
	})
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	for {
		select {
		case <-timeoutCtx.Done():
			return nil, errors.New("etcd connection timed out")
		case <-time.After(time.Second):
			checkTime, cancel_ := context.WithTimeout(context.Background(), time.Second)
			_, err = cli.Status(checkTime, endpoints[0])
			cancel_()
			if err == nil {
				return &EtcdStore{client: cli, prefix: prefix}, nil
			}
		}
	}
}

func (s *EtcdStore) put(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ResponseTimeout)
	_, err := s.client.Put(ctx, key, value)
	cancel()
	return err
}

func (s *EtcdStore) get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ResponseTimeout)
	resp, err := s.client.Get(ctx, key)
	cancel()
	if err != nil {
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", fmt.Errorf("etcd store: key %q not found", key)
	}
	return string(resp.Kvs[0].Value), nil
}

func (s *EtcdStore) modelKey(modelId string) string {
	return s.prefix + "/model/" + modelId
}

func (s *EtcdStore) hierarchyKey(taskId string) string {
	return s.prefix + "/hierarchy/" + taskId
}

func (s *EtcdStore) SaveModel(m *rbc.ModelJSON) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.put(s.modelKey(m.ModelId), string(data))
}

func (s *EtcdStore) LoadModel(modelId string) (*rbc.ModelJSON, error) {
	raw, err := s.get(s.modelKey(modelId))
	if err != nil {
		return nil, err
	}
	m := &rbc.ModelJSON{}
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *EtcdStore) SaveHierarchy(taskId string, nodes []rbc.HierarchyNodeJSON) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	return s.put(s.hierarchyKey(taskId), string(data))
}

func (s *EtcdStore) LoadHierarchy(taskId string) ([]rbc.HierarchyNodeJSON, error) {
	raw, err := s.get(s.hierarchyKey(taskId))
	if err != nil {
		return nil, err
	}
	var nodes []rbc.HierarchyNodeJSON
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Close 关闭etcd连接
func (s *EtcdStore) Close() error {
	return s.client.Close()
}
