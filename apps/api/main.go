package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/shikshaconnect/shiksha/apps/api/echo"
	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
	identitysvc "github.com/shikshaconnect/shiksha/services/identity"
	insightsvc "github.com/shikshaconnect/shiksha/services/insight"
	logsvc "github.com/shikshaconnect/shiksha/services/logger"
	visionsvc "github.com/shikshaconnect/shiksha/services/vision"
	mongodb "github.com/shikshaconnect/shiksha/storage/database/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := mongodb.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout)
		defer cancel()
		if err = mongodb.Close(ctx, db); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up repositories
	usrRepo := mongodb.NewUserRepository(db)
	stdRepo := mongodb.NewStudentRepository(db)
	attRepo := mongodb.NewAttendanceRepository(db)

	// set up services
	var insightSvc core.InsightService
	if conf.Insight.Enabled && conf.Insight.APIKey != "" {
		insightSvc = insightsvc.NewService(conf)
	}
	usrSvc := user.NewService(usrRepo, conf)
	stdSvc := student.NewService(stdRepo, visionsvc.NewService(), conf)
	attSvc := attendance.NewService(attRepo, stdRepo, insightSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Addr,
		nil, /* shutdown */
		&echoapi.Deps{
			Conf:          conf,
			Logger:        logger,
			Identity:      identitysvc.NewService(conf),
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			AttendanceSvc: attSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
