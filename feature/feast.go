package feature

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// FeastProvider 从 Feast Feature Store 的在线存储读取商品特征，
// 用于 price/rating 等特征由离线管道统一产出的部署形态。
//
// FeatureRefs 使用 Feast 的 "view:feature" 写法，注入时取冒号后的短名，
// 例如 "product_stats:rating" 写入 Meta["rating"]。
type FeastProvider struct {
	client *feastsdk.GrpcClient

	Project     string
	EntityKey   string   // 默认 "product_id"
	FeatureRefs []string // 例如 ["product_stats:rating", "product_stats:price"]
}

// NewFeastProvider 连接 Feast Feature Server（gRPC，默认端口 6565）。
func NewFeastProvider(host string, port int, project string, featureRefs []string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feature: dial feast %s:%d: %w", host, port, err)
	}
	return &FeastProvider{
		client:      client,
		Project:     project,
		EntityKey:   "product_id",
		FeatureRefs: featureRefs,
	}, nil
}

func (p *FeastProvider) Name() string { return "feature.feast" }

func (p *FeastProvider) ProductFeatures(ctx context.Context, productID string) (map[string]any, error) {
	all, err := p.BatchProductFeatures(ctx, []string{productID})
	if err != nil {
		return nil, err
	}
	features, ok := all[productID]
	if !ok {
		return nil, ErrFeatureNotFound
	}
	return features, nil
}

func (p *FeastProvider) BatchProductFeatures(ctx context.Context, productIDs []string) (map[string]map[string]any, error) {
	if p.client == nil {
		return nil, ErrProviderUnavailable
	}
	if len(productIDs) == 0 || len(p.FeatureRefs) == 0 {
		return map[string]map[string]any{}, nil
	}

	entityKey := p.EntityKey
	if entityKey == "" {
		entityKey = "product_id"
	}

	rows := make([]feastsdk.Row, len(productIDs))
	for i, id := range productIDs {
		rows[i] = feastsdk.Row{entityKey: feastsdk.StrVal(id)}
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: p.FeatureRefs,
		Entities: rows,
		Project:  p.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feature: feast get online features: %w", err)
	}

	respRows := resp.Rows()
	out := make(map[string]map[string]any, len(productIDs))
	for i, id := range productIDs {
		if i >= len(respRows) {
			break
		}
		features := make(map[string]any, len(p.FeatureRefs))
		for _, ref := range p.FeatureRefs {
			val, ok := respRows[i][featureShortName(ref)]
			if !ok {
				val, ok = respRows[i][ref]
			}
			if !ok {
				continue
			}
			if converted := fromFeastValue(val); converted != nil {
				features[featureShortName(ref)] = converted
			}
		}
		if len(features) > 0 {
			out[id] = features
		}
	}
	return out, nil
}

func (p *FeastProvider) Close() error {
	p.client = nil
	return nil
}

// featureShortName 取 "view:feature" 的 feature 部分。
func featureShortName(ref string) string {
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// fromFeastValue 把 Feast 的 protobuf Value 转成 Meta 使用的 Go 值。
// 数值统一转 float64，方便下游的规则表达式和平局比较。
func fromFeastValue(v *feasttypes.Value) any {
	if v == nil {
		return nil
	}
	switch t := v.GetVal().(type) {
	case *feasttypes.Value_StringVal:
		return t.StringVal
	case *feasttypes.Value_DoubleVal:
		return t.DoubleVal
	case *feasttypes.Value_FloatVal:
		return float64(t.FloatVal)
	case *feasttypes.Value_Int64Val:
		return float64(t.Int64Val)
	case *feasttypes.Value_Int32Val:
		return float64(t.Int32Val)
	case *feasttypes.Value_BoolVal:
		if t.BoolVal {
			return float64(1)
		}
		return float64(0)
	case *feasttypes.Value_BytesVal:
		return string(t.BytesVal)
	default:
		return nil
	}
}

var _ Provider = (*FeastProvider)(nil)
