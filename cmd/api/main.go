package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	httpadp "credisol-backend/internal/adapter/http"
	appmw "credisol-backend/internal/adapter/middleware"
	"credisol-backend/internal/adapter/repository/mysql"
	"credisol-backend/internal/config"
	"credisol-backend/internal/engine"
	"credisol-backend/internal/infrastructure/cache"
	"credisol-backend/internal/infrastructure/db"
	"credisol-backend/internal/tasks"
	loanUC "credisol-backend/internal/usecase/loan"
	paymentUC "credisol-backend/internal/usecase/payment"
	reprogUC "credisol-backend/internal/usecase/reprogramming"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	carry, _ := engine.ParseCarryPolicy(cfg.CarryPolicy)

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB, log)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}

	loans := mysql.NewLoanRepository(gdb)
	insts := mysql.NewInstallmentRepository(gdb)
	payments := mysql.NewPaymentRepository(gdb)
	reprogs := mysql.NewReprogrammingRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	loanUsecase := loanUC.NewUsecase(loans, insts, unit, log)
	paymentUsecase := paymentUC.NewUsecase(loans, insts, payments, unit, log)
	reprogUsecase := reprogUC.NewUsecase(reprogs, loans, unit, carry, log)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(loanUsecase)
	ph := httpadp.NewPaymentHandler(paymentUsecase)
	rh := httpadp.NewReprogrammingHandler(reprogUsecase)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	e.POST("/loans", lh.CreateLoan)
	e.GET("/loans/:loan_id", lh.GetLoan)
	e.POST("/loans/:loan_id/approve", lh.ApproveLoan)
	e.POST("/loans/:loan_id/reject", lh.RejectLoan)
	e.POST("/loans/:loan_id/cancel", lh.CancelLoan)
	e.GET("/loans/:loan_id/schedule", lh.GetSchedule)
	e.GET("/loans/:loan_id/outstanding", ph.GetOutstanding)
	e.GET("/loans/:loan_id/payments", ph.ListPayments)

	// money-moving endpoints sit behind the idempotency guard
	idemp := appmw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log)
	e.POST("/loans/:loan_id/payments", ph.RecordPayment, idemp)
	e.POST("/loans/:loan_id/reprogrammings", rh.Raise, idemp)
	e.POST("/reprogrammings/:request_id/approve", rh.Approve, idemp)
	e.POST("/reprogrammings/:request_id/reject", rh.Reject, idemp)
	e.GET("/reprogrammings/:request_id", rh.Get)

	sweeper := tasks.NewArrearsSweeper(loans, insts, unit, log)
	cr := cron.New()
	if _, err := cr.AddFunc(cfg.ArrearsCron, sweeper.Run); err != nil {
		log.WithError(err).Fatal("invalid ARREARS_CRON")
	}
	cr.Start()
	defer cr.Stop()

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
