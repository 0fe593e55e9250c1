package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"cashbook/internal/models"
)

// ReminderMessage is the body published for a fired reminder.
type ReminderMessage struct {
	TaskID            string    `json:"task_id"`
	LoanTransactionID string    `json:"loan_transaction_id"`
	LoanBookID        string    `json:"loan_book_id"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	DueAt             time.Time `json:"due_at"`
}

// publisher is the part of *amqp091.Channel the notifier needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPNotifier publishes reminders to a durable direct exchange, routed to
// a queue of the same name as the routing key.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  publisher
	exchange string
	queue    string
}

// DialAMQP connects to the broker and declares the exchange, the queue and
// their binding.
func DialAMQP(url, exchange, queue string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPNotifier{conn: conn, channel: ch, exchange: exchange, queue: queue}, nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (n *AMQPNotifier) Notify(ctx context.Context, task models.ReminderTask) error {
	body, err := json.Marshal(ReminderMessage{
		TaskID:            task.ID,
		LoanTransactionID: task.LoanTransactionID,
		LoanBookID:        task.LoanBookID,
		Title:             task.Title,
		Body:              task.Body,
		DueAt:             task.DueAt,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = n.channel.PublishWithContext(ctx, n.exchange, n.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		MessageId:    task.ID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (n *AMQPNotifier) Close() error {
	if ch, ok := n.channel.(*amqp091.Channel); ok && ch != nil {
		ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
