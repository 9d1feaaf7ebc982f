package auth

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("RedisRevocationStore", func() {
	var (
		ctx    context.Context
		mr     *miniredis.Miniredis
		client *redis.Client
		store  *RedisRevocationStore
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mr = miniredis.RunT(ginkgo.GinkgoT())

		var err error
		client, err = NewRedisClient(ctx, "redis://"+mr.Addr())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		store = NewRedisRevocationStore(client, "hr")
	})

	ginkgo.AfterEach(func() {
		_ = client.Close()
	})

	ginkgo.It("should remember a revoked jti until it expires", func() {
		gomega.Expect(store.Revoke(ctx, "abc", time.Now().Add(time.Hour))).To(gomega.Succeed())

		revoked, err := store.IsRevoked(ctx, "abc")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(revoked).To(gomega.BeTrue())
		gomega.Expect(mr.Exists("hr:revoked:abc")).To(gomega.BeTrue())

		mr.FastForward(2 * time.Hour)

		revoked, err = store.IsRevoked(ctx, "abc")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(revoked).To(gomega.BeFalse())
	})

	ginkgo.It("should skip tokens that already expired", func() {
		gomega.Expect(store.Revoke(ctx, "old", time.Now().Add(-time.Minute))).To(gomega.Succeed())
		gomega.Expect(mr.Exists("hr:revoked:old")).To(gomega.BeFalse())
	})

	ginkgo.It("should report unknown ids as not revoked", func() {
		revoked, err := store.IsRevoked(ctx, "nope")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(revoked).To(gomega.BeFalse())
	})

	ginkgo.It("should let exactly one claim win", func() {
		exp := time.Now().Add(time.Hour)

		won, err := store.Claim(ctx, "abc", exp)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(won).To(gomega.BeTrue())

		won, err = store.Claim(ctx, "abc", exp)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(won).To(gomega.BeFalse())

		gomega.Expect(mr.TTL("hr:revoked:abc")).To(gomega.BeNumerically(">", 59*time.Minute))
	})

	ginkgo.It("should refuse claims on a blacklisted token", func() {
		exp := time.Now().Add(time.Hour)
		gomega.Expect(store.Revoke(ctx, "abc", exp)).To(gomega.Succeed())

		won, err := store.Claim(ctx, "abc", exp)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(won).To(gomega.BeFalse())
	})

	ginkgo.It("should surface connection errors", func() {
		_ = client.Close()

		_, err := store.IsRevoked(ctx, "abc")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("MemoryRevocationStore", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *MemoryRevocationStore
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Now()
		store = NewMemoryRevocationStore(DefaultRevocationCapacity, time.Hour)
		store.now = func() time.Time { return now }
	})

	ginkgo.It("should forget entries once the token expires", func() {
		gomega.Expect(store.Revoke(ctx, "abc", now.Add(time.Minute))).To(gomega.Succeed())
		revoked, _ := store.IsRevoked(ctx, "abc")
		gomega.Expect(revoked).To(gomega.BeTrue())

		now = now.Add(2 * time.Minute)
		revoked, _ = store.IsRevoked(ctx, "abc")
		gomega.Expect(revoked).To(gomega.BeFalse())
	})

	ginkgo.It("should not store tokens that already expired", func() {
		gomega.Expect(store.Revoke(ctx, "old", now.Add(-time.Minute))).To(gomega.Succeed())
		gomega.Expect(store.revoked.Len()).To(gomega.Equal(0))
	})

	ginkgo.It("should drop entries after the store ttl", func() {
		short := NewMemoryRevocationStore(10, 20*time.Millisecond)
		gomega.Expect(short.Revoke(ctx, "abc", time.Now().Add(time.Hour))).To(gomega.Succeed())

		gomega.Eventually(func() bool {
			revoked, _ := short.IsRevoked(ctx, "abc")
			return revoked
		}).WithTimeout(time.Second).Should(gomega.BeFalse())
	})

	ginkgo.It("should stay within its capacity", func() {
		small := NewMemoryRevocationStore(2, time.Hour)
		for _, jti := range []string{"a", "b", "c"} {
			gomega.Expect(small.Revoke(ctx, jti, time.Now().Add(time.Minute))).To(gomega.Succeed())
		}

		gomega.Expect(small.revoked.Len()).To(gomega.Equal(2))
		revoked, _ := small.IsRevoked(ctx, "a")
		gomega.Expect(revoked).To(gomega.BeFalse())
	})

	ginkgo.It("should let exactly one of many concurrent claims win", func() {
		const attempts = 20
		wins := make(chan bool, attempts)
		for i := 0; i < attempts; i++ {
			go func() {
				defer ginkgo.GinkgoRecover()
				won, err := store.Claim(ctx, "abc", now.Add(time.Minute))
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				wins <- won
			}()
		}

		total := 0
		for i := 0; i < attempts; i++ {
			if <-wins {
				total++
			}
		}
		gomega.Expect(total).To(gomega.Equal(1))

		revoked, _ := store.IsRevoked(ctx, "abc")
		gomega.Expect(revoked).To(gomega.BeTrue())
	})
})
