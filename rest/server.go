package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	ballot "github.com/jicksta/ballot-box"
	"github.com/jicksta/ballot-box/internal/config"
	"github.com/jicksta/ballot-box/sqlite"
)

const callerKey = "caller"

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	log.SetPrefix(cfg.LogPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	recorder := ballot.NewRecorder()
	box, err := ballot.New(ctx, store, ballot.Identity(cfg.Owner),
		ballot.WithNotifier(ballot.MultiNotifier{recorder, ballot.LogNotifier{Logger: log.Default()}}),
		ballot.WithLogger(log.Default()),
	)
	if err != nil {
		log.Fatalf("init ballot box: %v", err)
	}
	log.Printf("ballot box owned by %s, listening on %s", box.Owner(), cfg.Addr)

	srv := &http.Server{Addr: cfg.Addr, Handler: newRouter(box, recorder, cfg.IdentityHeader)}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
}

// openStore returns a SQLite store when path is set and an in-memory store otherwise.
func openStore(ctx context.Context, path string) (ballot.BallotStore, func(), error) {
	if path == "" {
		return ballot.NewMemoryStore(), func() {}, nil
	}
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}, nil
}

func newRouter(box *ballot.BallotBox, recorder *ballot.Recorder, identityHeader string) *gin.Engine {
	r := gin.Default()
	r.Use(callerIdentity(identityHeader))

	r.GET("/proposals", func(c *gin.Context) {
		proposals, err := box.Proposals(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, proposals)
	})

	r.POST("/proposals", func(c *gin.Context) {
		var body struct {
			Description *string `json:"description"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Description == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "body must be {\"description\": string}"})
			return
		}
		id, err := box.CreateProposal(c.Request.Context(), caller(c), *body.Description)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})

	r.GET("/proposals/:proposalID", func(c *gin.Context) {
		id, ok := proposalID(c)
		if !ok {
			return
		}
		description, votes, err := box.GetProposal(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ballot.ProposalView{ID: id, Description: description, Votes: votes})
	})

	r.POST("/proposals/:proposalID/votes", func(c *gin.Context) {
		id, ok := proposalID(c)
		if !ok {
			return
		}
		if err := box.Vote(c.Request.Context(), caller(c), id); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/total-proposals", func(c *gin.Context) {
		total, err := box.TotalProposals(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total})
	})

	r.GET("/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, recorder.Envelopes())
	})

	return r
}

// callerIdentity trusts header to carry the identity the hosting environment has already authenticated.
func callerIdentity(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader(header)
		if identity == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + header + " header"})
			return
		}
		c.Set(callerKey, ballot.Identity(identity))
		c.Next()
	}
}

func caller(c *gin.Context) ballot.Identity {
	identity, _ := c.Get(callerKey)
	id, _ := identity.(ballot.Identity)
	return id
}

func proposalID(c *gin.Context) (uint32, bool) {
	raw := c.Param("proposalID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid proposal id " + raw})
		return 0, false
	}
	return uint32(id), true
}

func abortWithError(c *gin.Context, err error) {
	var ballotErr *ballot.Error
	if !errors.As(err, &ballotErr) {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusBadRequest
	switch ballotErr.Code {
	case ballot.CodeOnlyOwnerCanPerformAction:
		status = http.StatusForbidden
	case ballot.CodeProposalDoesNotExist:
		status = http.StatusNotFound
	case ballot.CodeAlreadyVoted:
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": ballotErr.Message, "code": ballotErr.Code})
}
