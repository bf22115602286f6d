package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"rbc-shenglin/classify/format"
	"rbc-shenglin/classify/hierarchy"
	"rbc-shenglin/classify/ml/learner"
	"rbc-shenglin/rbc_config"
	"rbc-shenglin/rock-share/base/config"
	"rbc-shenglin/rock-share/base/logger"
	"rbc-shenglin/rock-share/global/enum"
	"rbc-shenglin/storage"
)

var store storage.Store

func main() {
	go func() {
		err := http.ListenAndServe(":8081", nil)
		if err != nil {
			fmt.Printf("http.ListenAndServe failed, err:%s", err)
		}
	}()

	// 一些初始化配置
	config.InitConfig()
	all := config.All
	l := all.Logger
	ss := all.Server
	logger.InitLogger(l.Level, "rock", l.Path, l.MaxAge, l.RotationTime, l.RotationSize, ss.SentryDsn)
	store = initStore(all)

	r := gin.Default()

	r.POST("/rbc/train", train)
	r.POST("/rbc/predict", predict)

	address := ":" + rbc_config.GinPort
	r.Run(address)
}

// 存储按配置选型: etcd > 关系库 > 单机内存
func initStore(all *config.AllConfig) storage.Store {
	if len(all.Etcd.Endpoints) > 0 {
		s, err := storage.NewEtcdStore(all.Etcd.Endpoints, all.Etcd.KeyPrefix)
		if err != nil {
			panic(fmt.Sprintf("connect etcd failed: %v", err))
		}
		return s
	}
	if all.Db.Host != "" {
		db := all.Db
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			db.Host, db.Port, db.User, db.Password, db.DB)
		gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			panic(fmt.Sprintf("connect db failed: %v", err))
		}
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(db.MaxOpenConns)
			sqlDB.SetMaxIdleConns(db.MaxIdleConns)
		}
		s, err := storage.NewGormStore(gdb)
		if err != nil {
			panic(fmt.Sprintf("init gorm store failed: %v", err))
		}
		return s
	}
	logger.Info("no etcd endpoints or db host configured, using in-memory store")
	return storage.NewMemoryStore()
}

func train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		logger.Errorf("train request malformed: %v", err)
		return
	}

	begin := time.Now()
	h, err := runTrain(&req)
	if err != nil {
		logger.Errorf("train %s failed: %v", req.TaskId, err)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"status":  enum.TRAIN_FAIL,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"status":     enum.TRAIN_FINISH,
		"node_size":  h.Len(),
		"spent_time": time.Since(begin).Seconds(),
	})
}

func runTrain(req *TrainRequest) (*hierarchy.Hierarchy, error) {
	if req.TaskId == "" {
		return nil, fmt.Errorf("taskId is required")
	}
	table, err := format.LoadTable(req.Table.Path, req.Table.ColumnsType)
	if err != nil {
		return nil, err
	}
	supplier, err := hierarchy.NewTableSupplier(table, req.OutputColumns)
	if err != nil {
		return nil, err
	}

	trainDefaults := config.All.Train
	grower := learner.NewNativeGrower()
	grower.CheckErr = trainDefaults.CheckErr
	if trainDefaults.ExpFPRate > 0 {
		grower.ExpFPOverErr = trainDefaults.ExpFPRate
	}

	cfg := hierarchy.TrainConfig{
		TaskId:    req.TaskId,
		CutOff:    req.CutOff,
		NumFolds:  req.NumFolds,
		FullTrain: req.FullTrain || trainDefaults.FullTrain,
	}
	if cfg.CutOff <= 0 {
		cfg.CutOff = trainDefaults.CutOff
	}
	if cfg.NumFolds < 2 {
		cfg.NumFolds = trainDefaults.NumFolds
	}
	order := req.NodeOrder
	if len(order) == 0 {
		order = trainDefaults.NodeOrder
	}
	cfg.Order = hierarchy.NewNodeOrder(order)

	h, err := hierarchy.NewTrainer(supplier, store, grower, cfg).Train()
	if err != nil {
		return nil, err
	}
	if req.GraphPath != "" {
		if err := h.ToSimpleGraph(req.GraphPath); err != nil {
			logger.Warnf("train %s: write graph %s: %v", req.TaskId, req.GraphPath, err)
		}
	}
	return h, nil
}

func predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		logger.Errorf("predict request malformed: %v", err)
		return
	}

	results, err := runPredict(&req)
	if err != nil {
		logger.Errorf("predict %s failed: %v", req.TaskId, err)
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

func runPredict(req *PredictRequest) ([][]hierarchy.LevelExplanation, error) {
	if req.TaskId == "" {
		return nil, fmt.Errorf("taskId is required")
	}
	p, err := hierarchy.NewPredictor(store, req.TaskId)
	if err != nil {
		return nil, err
	}
	root, _ := p.Hierarchy().Root()
	if len(root.Attributes) == 0 {
		return nil, fmt.Errorf("task %s: root node has no schema", req.TaskId)
	}
	table, err := format.LoadTable(req.Table.Path, req.Table.ColumnsType)
	if err != nil {
		return nil, err
	}
	// 根结点schema的0号属性就是最外层输出列
	ins, err := table.BuildPredictInstances(root.Attributes[0].Name, nil)
	if err != nil {
		return nil, err
	}
	if ins == nil || ins.Len() == 0 {
		return nil, fmt.Errorf("task %s: no rows to predict", req.TaskId)
	}
	return p.Predict(ins)
}
