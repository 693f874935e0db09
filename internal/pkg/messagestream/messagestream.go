package messagestream

import (
	"fmt"

	"ticketing-service/config"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
)

type Ampq struct {
	config amqp.Config
	logger watermill.LoggerAdapter
}

func NewAmpq(cfg *config.MessageStreamConfig) *Ampq {
	uri := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	return &Ampq{
		config: amqp.NewDurableQueueConfig(uri),
		logger: watermill.NewStdLogger(false, false),
	}
}

func (a *Ampq) NewSubscriber() (message.Subscriber, error) {
	return amqp.NewSubscriber(a.config, a.logger)
}

func (a *Ampq) NewPublisher() (message.Publisher, error) {
	return amqp.NewPublisher(a.config, a.logger)
}

// NewRouter wires a single no-publisher handler for topic, with poisoned
// messages redirected to poisonTopic instead of blocking the queue.
func NewRouter(publisher message.Publisher, poisonTopic, handlerName, topic string, subscriber message.Subscriber, handlerFunc message.NoPublishHandlerFunc) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewStdLogger(false, false))
	if err != nil {
		return nil, err
	}

	router.AddPlugin(plugin.SignalsHandler)

	poisonQueue, err := middleware.PoisonQueue(publisher, poisonTopic)
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(middleware.Recoverer, poisonQueue)

	router.AddNoPublisherHandler(handlerName, topic, subscriber, handlerFunc)

	return router, nil
}
