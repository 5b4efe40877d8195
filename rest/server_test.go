package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	ballot "github.com/jicksta/ballot-box"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

const header = "X-Caller-Identity"

var _ = Describe("REST server", func() {

	var (
		router   *gin.Engine
		recorder *ballot.Recorder
	)

	BeforeEach(func() {
		recorder = ballot.NewRecorder()
		box, err := ballot.New(context.Background(), ballot.NewMemoryStore(), "O", ballot.WithNotifier(recorder))
		Expect(err).To(Succeed())
		router = newRouter(box, recorder, header)
	})

	request := func(method, path, identity, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if identity != "" {
			req.Header.Set(header, identity)
		}
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder, into interface{}) {
		Expect(json.Unmarshal(w.Body.Bytes(), into)).To(Succeed())
	}

	It("requires a caller identity", func() {
		Expect(request("GET", "/total-proposals", "", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("plays the owner/voter scenario over HTTP", func() {
		w := request("POST", "/proposals", "O", `{"description": "A"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created struct{ ID uint32 }
		decode(w, &created)
		Expect(created.ID).To(Equal(uint32(0)))

		Expect(request("POST", "/proposals", "O", `{"description": "B"}`).Code).To(Equal(http.StatusCreated))

		var total struct{ Total uint32 }
		decode(request("GET", "/total-proposals", "anyone", ""), &total)
		Expect(total.Total).To(Equal(uint32(2)))

		Expect(request("POST", "/proposals/0/votes", "V1", "").Code).To(Equal(http.StatusNoContent))
		Expect(request("POST", "/proposals/0/votes", "V2", "").Code).To(Equal(http.StatusNoContent))

		var proposal ballot.ProposalView
		w = request("GET", "/proposals/0", "V1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		decode(w, &proposal)
		Expect(proposal).To(Equal(ballot.ProposalView{ID: 0, Description: "A", Votes: 2}))

		var proposals []ballot.ProposalView
		decode(request("GET", "/proposals", "V1", ""), &proposals)
		Expect(proposals).To(HaveLen(2))

		var events []map[string]interface{}
		decode(request("GET", "/events", "V1", ""), &events)
		Expect(events).To(HaveLen(4))
		Expect(events[0]["topic"]).To(Equal("ProposalCreated"))
		Expect(events[3]["topic"]).To(Equal("VoteCast"))
	})

	DescribeTable("maps refusals to status codes",
		func(method, path, identity, body string, status int) {
			Expect(request("POST", "/proposals", "O", `{"description": "A"}`).Code).To(Equal(http.StatusCreated))
			Expect(request("POST", "/proposals/0/votes", "V1", "").Code).To(Equal(http.StatusNoContent))

			Expect(request(method, path, identity, body).Code).To(Equal(status))
		},
		Entry("non-owner creation", "POST", "/proposals", "V1", `{"description": "B"}`, http.StatusForbidden),
		Entry("double vote", "POST", "/proposals/0/votes", "V1", "", http.StatusConflict),
		Entry("vote on missing proposal", "POST", "/proposals/5/votes", "V1", "", http.StatusNotFound),
		Entry("get missing proposal", "GET", "/proposals/5", "V1", "", http.StatusNotFound),
		Entry("malformed id", "GET", "/proposals/zero", "V1", "", http.StatusUnprocessableEntity),
		Entry("id out of range", "GET", "/proposals/4294967296", "V1", "", http.StatusUnprocessableEntity),
		Entry("missing description", "POST", "/proposals", "O", `{}`, http.StatusUnprocessableEntity),
	)

	It("accepts an empty description", func() {
		Expect(request("POST", "/proposals", "O", `{"description": ""}`).Code).To(Equal(http.StatusCreated))
	})

})
