package repository

import (
	"context"

	"pvedeploy/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const deploymentEventCollection = "deployment_events"

// DeploymentEventRepository 部署进度流水；MongoDB 未配置时为空实现
type DeploymentEventRepository interface {
	Append(ctx context.Context, ev *model.DeploymentEvent) error
	ListByDeployment(ctx context.Context, deploymentID int64, runID string) ([]*model.DeploymentEvent, error)
}

func NewDeploymentEventRepository(r *Repository) DeploymentEventRepository {
	if r.mongo == nil {
		return noopEventRepository{}
	}
	return &deploymentEventRepository{coll: r.mongo.Collection(deploymentEventCollection)}
}

type deploymentEventRepository struct {
	coll *mongo.Collection
}

func (r *deploymentEventRepository) Append(ctx context.Context, ev *model.DeploymentEvent) error {
	_, err := r.coll.InsertOne(ctx, ev)
	return err
}

func (r *deploymentEventRepository) ListByDeployment(ctx context.Context, deploymentID int64, runID string) ([]*model.DeploymentEvent, error) {
	filter := bson.M{"deployment_id": deploymentID}
	if runID != "" {
		filter["run_id"] = runID
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []*model.DeploymentEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

type noopEventRepository struct{}

func (noopEventRepository) Append(context.Context, *model.DeploymentEvent) error { return nil }

func (noopEventRepository) ListByDeployment(context.Context, int64, string) ([]*model.DeploymentEvent, error) {
	return nil, nil
}
